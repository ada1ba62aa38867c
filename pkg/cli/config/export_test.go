package config

// NewPolicyForTest creates a Policy with the given values for testing
func NewPolicyForTest(path string, itemdefDirs ...string) *Policy {
	return &Policy{path: path, itemdefDirs: itemdefDirs}
}

// NewLoggerForTest creates a Logger with the given values for testing
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewGeminiForTest creates a Gemini config with the given values for testing
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{projectID: projectID, location: location}
}

// NewRepositoryForTest creates a Repository config with the given values for testing
func NewRepositoryForTest(backend, projectID, databaseID string) *Repository {
	return &Repository{backend: backend, projectID: projectID, databaseID: databaseID}
}
