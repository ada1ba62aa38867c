package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityID is a UUID-based identifier for Activity
type ActivityID string

// NewActivityID generates a new UUID v4 ActivityID
func NewActivityID() ActivityID {
	return ActivityID(uuid.New().String())
}

// String returns the string representation of the ActivityID
func (id ActivityID) String() string {
	return string(id)
}

// Activity is one progress entry of an assistant run against a session:
// which tool acted, what it reported, and when. The trail gives engineers
// an audit of how each artifact was produced.
type Activity struct {
	ID        ActivityID
	SessionID SessionID
	Tool      string
	Message   string
	CreatedAt time.Time
}
