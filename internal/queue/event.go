// Package queue defines the message payloads exchanged over the broker and
// the background consumer that processes them.
package queue

// SessionCompletedEvent is published when a charging session is stopped.  It
// carries enough context for downstream consumers to log or aggregate without
// touching the primary database.
type SessionCompletedEvent struct {
	SessionID      uint64 `json:"session_id"`
	UserID         uint64 `json:"user_id"`
	UserEmail      string `json:"user_email"`
	StationID      uint64 `json:"station_id"`
	StationName    string `json:"station_name"`
	OfficeID       uint64 `json:"office_id"`
	StartedAt      string `json:"started_at"`
	EndedAt        string `json:"ended_at"`
	DurationMinute uint64 `json:"duration_minutes"`
}
