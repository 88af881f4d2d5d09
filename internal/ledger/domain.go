package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/praxis-pm/praxis/internal/billing"
)

// Item is the unified ledger view over real payments and synthesized
// ("virtual") unpaid session entries. Items carry no identity of their own:
// they are recomputed from scratch whenever the sources or the active window
// change.
type Item struct {
	ID          string
	IsVirtual   bool
	Status      billing.PaymentStatus
	Amount      float64
	Date        time.Time
	PatientID   uuid.UUID
	PatientName string
	SessionID   string
	Description string
	// Payment references the source record for real items; nil when virtual.
	Payment *billing.Payment
}
