package schedule

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates session lifecycle states.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusConfirmed SessionStatus = "confirmed"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// Session model. Sessions are owned by the scheduling service; this module
// only reads them. A zero ScheduledFrom/ScheduledTo marks a record that is
// not yet fully entered and is skipped by consumers.
type Session struct {
	ID            uuid.UUID
	ScheduledFrom time.Time
	ScheduledTo   time.Time
	Status        SessionStatus
	PatientID     uuid.UUID
	PatientName   string
	Cost          float64
	Summary       string
}

// MonthKey identifies one calendar month of session data.
type MonthKey struct {
	Year  int
	Month time.Month
}
