package memory

import (
	"github.com/fusa-lab/talos/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	sessions   *sessionRepository
	activities *activityRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		sessions:   newSessionRepository(),
		activities: newActivityRepository(),
	}
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.sessions
}

func (m *Memory) Activity() interfaces.ActivityRepository {
	return m.activities
}
