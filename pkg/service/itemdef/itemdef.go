package itemdef

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/utils/logging"
)

// ErrDefinitionNotFound is returned when no document in the configured
// directories matches the requested item name.
var ErrDefinitionNotFound = goerr.New("item definition not found")

// Definition is an item definition document resolved from disk.
type Definition struct {
	ItemName string
	Source   string
	Content  string
}

// Service looks up item definition documents in local directories.
// Directories are searched in the order given; within a directory a
// filename match takes precedence over a content match.
type Service struct {
	dirs []string
}

// New creates a lookup service over the given directories. Directories
// that do not exist are skipped during lookup.
func New(dirs ...string) *Service {
	return &Service{dirs: dirs}
}

// Lookup finds the definition document for an item. Matching is
// case-insensitive: first by file name (spaces, underscores and hyphens
// ignored), then by the item name appearing in the file content.
func (x *Service) Lookup(ctx context.Context, itemName string) (*Definition, error) {
	name := strings.TrimSpace(itemName)
	if name == "" {
		return nil, goerr.New("item name is required")
	}

	logger := logging.From(ctx)
	wantStem := normalize(name)
	wantContent := strings.ToLower(name)

	for _, dir := range x.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		var candidates []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".md", ".txt":
				candidates = append(candidates, e.Name())
			}
		}

		// File name pass
		for _, fname := range candidates {
			stem := strings.TrimSuffix(fname, filepath.Ext(fname))
			if !strings.Contains(normalize(stem), wantStem) {
				continue
			}
			def, err := x.read(dir, fname, name)
			if err != nil {
				logger.Warn("Failed to read item definition file", "file", fname, logging.ErrAttr(err))
				continue
			}
			return def, nil
		}

		// Content pass
		for _, fname := range candidates {
			def, err := x.read(dir, fname, name)
			if err != nil {
				logger.Warn("Failed to read item definition file", "file", fname, logging.ErrAttr(err))
				continue
			}
			if strings.Contains(strings.ToLower(def.Content), wantContent) {
				return def, nil
			}
		}
	}

	return nil, goerr.Wrap(ErrDefinitionNotFound, "no document matches item name",
		goerr.V("item_name", name),
		goerr.V("dirs", x.dirs),
	)
}

func (x *Service) read(dir, fname, itemName string) (*Definition, error) {
	path := filepath.Join(dir, fname)
	// #nosec G304 -- path comes from configured directories, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}
	return &Definition{
		ItemName: itemName,
		Source:   path,
		Content:  string(data),
	}, nil
}

// normalize lowers the string and strips separators so that
// "Brake-by-Wire System" matches "brake_by_wire_system.md".
func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, s)
}
