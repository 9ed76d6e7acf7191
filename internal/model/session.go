package model

import "time"

// Session is a single timed test: an opaque id plus a cursor into the catalog.
type Session struct {
	ID                  string     `json:"id" bson:"_id"`
	Active              bool       `json:"active" bson:"active"`
	CurrentProblemIndex int        `json:"currentProblemIndex" bson:"currentProblemIndex"`
	CreatedAt           time.Time  `json:"createdAt" bson:"createdAt"`
	EndedAt             *time.Time `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// SessionStatus is the body of GET /test/validate_id/{id}
type SessionStatus struct {
	Active bool `json:"active"`
}

// StartResponse is returned when a test is started
type StartResponse struct {
	TestID string `json:"testId"`
}

// CurrentProblem is the problem a session is positioned on
type CurrentProblem struct {
	Index   int      `json:"index"` // 0-based catalog position
	Total   int      `json:"total"` // catalog length
	Problem *Problem `json:"problem"`
}
