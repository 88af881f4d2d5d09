package billing

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus enumerates payment states.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPaid    PaymentStatus = "paid"
	StatusOverdue PaymentStatus = "overdue"
)

// Payment model. Payments are owned by the billing service; this module only
// reads them. A payment need not reference a session; reconciliation only
// considers the ones that do.
type Payment struct {
	ID          uuid.UUID
	SessionID   uuid.NullUUID
	Amount      float64
	PaymentDate time.Time
	Status      PaymentStatus
	PaidDate    time.Time
	Description string
	PatientID   uuid.UUID
	PatientName string
}
