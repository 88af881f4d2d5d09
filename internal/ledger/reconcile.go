package ledger

import (
	"time"

	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/schedule"
)

// virtualIDPrefix marks items synthesized from unpaid sessions. The suffix is
// the session ID, keeping virtual IDs stable across recomputations.
const virtualIDPrefix = "virtual-"

// fallbackDescription is used when an unpaid session has no summary.
const fallbackDescription = "Unpaid session"

// Reconcile merges payments and sessions into the unified ledger. Every
// payment maps to exactly one real item. A session yields a virtual pending
// item only when it is already over (scheduled end before now, or status
// completed), no payment references it, and it carries a positive cost.
// Real items come first in the output; the pipeline re-sorts downstream.
func Reconcile(sessions []schedule.Session, payments []billing.Payment, now time.Time) []Item {
	paidSessions := make(map[string]struct{}, len(payments))
	for _, p := range payments {
		if p.SessionID.Valid {
			paidSessions[p.SessionID.UUID.String()] = struct{}{}
		}
	}

	items := make([]Item, 0, len(payments)+len(sessions))
	for _, p := range payments {
		p := p
		item := Item{
			ID:          p.ID.String(),
			Status:      p.Status,
			Amount:      p.Amount,
			Date:        p.PaymentDate,
			PatientID:   p.PatientID,
			PatientName: p.PatientName,
			Description: p.Description,
			Payment:     &p,
		}
		if p.SessionID.Valid {
			item.SessionID = p.SessionID.UUID.String()
		}
		items = append(items, item)
	}

	for _, s := range sessions {
		if !eligibleForVirtual(s, paidSessions, now) {
			continue
		}
		description := s.Summary
		if description == "" {
			description = fallbackDescription
		}
		items = append(items, Item{
			ID:          virtualIDPrefix + s.ID.String(),
			IsVirtual:   true,
			Status:      billing.StatusPending,
			Amount:      s.Cost,
			Date:        s.ScheduledFrom,
			PatientID:   s.PatientID,
			PatientName: s.PatientName,
			SessionID:   s.ID.String(),
			Description: description,
		})
	}
	return items
}

// eligibleForVirtual applies the three-way test for synthesizing an unpaid
// entry. Records missing schedule timestamps are not valid sessions yet and
// never qualify.
func eligibleForVirtual(s schedule.Session, paid map[string]struct{}, now time.Time) bool {
	if s.ScheduledFrom.IsZero() || s.ScheduledTo.IsZero() {
		return false
	}
	over := s.ScheduledTo.Before(now) || s.Status == schedule.StatusCompleted
	if !over {
		return false
	}
	if _, ok := paid[s.ID.String()]; ok {
		return false
	}
	return s.Cost > 0
}
