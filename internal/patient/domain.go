package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient metadata. Owned by the patient-records service; read-only here.
// CreatedAt feeds the "new patients in period" aggregate.
type Patient struct {
	ID        uuid.UUID
	FullName  string
	CreatedAt time.Time
}
