package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/patient"
	"github.com/praxis-pm/praxis/internal/schedule"
)

const topPatientsLimit = 5

// Input bundles the window-restricted collections one Aggregate call reads.
type Input struct {
	Tag      ledger.RangeTag
	Range    ledger.Range
	Items    []ledger.Item
	Sessions []schedule.Session
	Patients []patient.Patient
}

// Aggregate computes every dashboard figure from the filtered inputs.
// It is a pure function: identical inputs yield an identical Dashboard.
func Aggregate(in Input) Dashboard {
	return Dashboard{
		Totals:            totalsOf(in.Items),
		CompletionRate:    completionRate(in.Sessions),
		ActivePatients:    activePatients(in.Sessions),
		NewPatients:       newPatients(in.Patients, in.Range),
		IncomeOverTime:    timeSeries(in.Tag, incomeSamples(in.Items)),
		SessionsOverTime:  timeSeries(in.Tag, sessionSamples(in.Sessions)),
		SessionsByHour:    sessionsByHour(in.Sessions),
		SessionsByWeekday: sessionsByWeekday(in.Sessions),
		SessionsByStatus:  sessionsByStatus(in.Sessions),
		PaymentsByStatus:  paymentsByStatus(in.Items),
		TopPatients:       topPatients(in.Sessions),
	}
}

func totalsOf(items []ledger.Item) Totals {
	var t Totals
	for _, item := range items {
		t.TotalAmount += item.Amount
		t.TotalCount++
		switch item.Status {
		case billing.StatusPaid:
			t.PaidAmount += item.Amount
			t.PaidCount++
		case billing.StatusOverdue:
			t.OverdueAmount += item.Amount
			t.OverdueCount++
		default:
			t.PendingAmount += item.Amount
			t.PendingCount++
		}
	}
	return t
}

// completionRate is the rounded percentage of completed sessions, zero when
// there are no sessions at all.
func completionRate(sessions []schedule.Session) int {
	if len(sessions) == 0 {
		return 0
	}
	completed := 0
	for _, s := range sessions {
		if s.Status == schedule.StatusCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(sessions))))
}

func activePatients(sessions []schedule.Session) int {
	seen := make(map[uuid.UUID]struct{}, len(sessions))
	for _, s := range sessions {
		if s.PatientID == uuid.Nil {
			continue
		}
		seen[s.PatientID] = struct{}{}
	}
	return len(seen)
}

func newPatients(patients []patient.Patient, rng ledger.Range) int {
	count := 0
	for _, p := range patients {
		if p.CreatedAt.IsZero() {
			continue
		}
		if p.CreatedAt.Before(rng.Start) || p.CreatedAt.After(rng.End) {
			continue
		}
		count++
	}
	return count
}

type sample struct {
	at     time.Time
	amount float64
}

func incomeSamples(items []ledger.Item) []sample {
	out := make([]sample, 0, len(items))
	for _, item := range items {
		out = append(out, sample{at: item.Date, amount: item.Amount})
	}
	return out
}

func sessionSamples(sessions []schedule.Session) []sample {
	out := make([]sample, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sample{at: s.ScheduledFrom})
	}
	return out
}

// timeSeries buckets samples at the granularity the range tag implies:
// calendar days for week ranges, week-of-month for month ranges, calendar
// months otherwise. Only buckets with activity are emitted, chronologically.
func timeSeries(tag ledger.RangeTag, samples []sample) []SeriesPoint {
	type bucket struct {
		point SeriesPoint
		ord   int
	}
	buckets := make(map[int]*bucket)
	for _, s := range samples {
		ord, label := bucketFor(tag, s.at)
		b := buckets[ord]
		if b == nil {
			b = &bucket{point: SeriesPoint{Label: label}, ord: ord}
			buckets[ord] = b
		}
		b.point.Count++
		b.point.Amount += s.amount
	}
	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ord < ordered[j].ord })
	points := make([]SeriesPoint, 0, len(ordered))
	for _, b := range ordered {
		points = append(points, b.point)
	}
	return points
}

func bucketFor(tag ledger.RangeTag, t time.Time) (int, string) {
	switch tag {
	case ledger.RangeWeek:
		return t.Year()*1000 + t.YearDay(), fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
	case ledger.RangeMonth:
		week := (t.Day() + 6) / 7
		return week, fmt.Sprintf("Week %d", week)
	default:
		return t.Year()*12 + int(t.Month()), t.Month().String()
	}
}

// sessionsByHour always emits the 13 working hours 08:00 through 20:00,
// zero-filled, keyed by the session start hour.
func sessionsByHour(sessions []schedule.Session) []SeriesPoint {
	points := make([]SeriesPoint, 0, 13)
	index := make(map[int]int, 13)
	for hour := 8; hour <= 20; hour++ {
		index[hour] = len(points)
		points = append(points, SeriesPoint{Label: fmt.Sprintf("%02d:00", hour)})
	}
	for _, s := range sessions {
		if i, ok := index[s.ScheduledFrom.Hour()]; ok {
			points[i].Count++
		}
	}
	return points
}

// sessionsByWeekday always emits exactly 7 rows ordered Monday first.
func sessionsByWeekday(sessions []schedule.Session) []SeriesPoint {
	labels := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	points := make([]SeriesPoint, len(labels))
	for i, label := range labels {
		points[i] = SeriesPoint{Label: label}
	}
	for _, s := range sessions {
		points[(int(s.ScheduledFrom.Weekday())+6)%7].Count++
	}
	return points
}

func sessionsByStatus(sessions []schedule.Session) []StatusCount {
	counts := make(map[schedule.SessionStatus]int, 4)
	for _, s := range sessions {
		counts[s.Status]++
	}
	statuses := []schedule.SessionStatus{
		schedule.StatusPending,
		schedule.StatusConfirmed,
		schedule.StatusCompleted,
		schedule.StatusCancelled,
	}
	out := make([]StatusCount, 0, len(counts))
	for _, status := range statuses {
		if counts[status] > 0 {
			out = append(out, StatusCount{Status: string(status), Count: counts[status]})
		}
	}
	return out
}

// paymentsByStatus breaks down real payments only; projected items never
// went through the billing store.
func paymentsByStatus(items []ledger.Item) []StatusCount {
	counts := make(map[billing.PaymentStatus]int, 3)
	for _, item := range items {
		if item.IsVirtual {
			continue
		}
		counts[item.Status]++
	}
	statuses := []billing.PaymentStatus{billing.StatusPending, billing.StatusPaid, billing.StatusOverdue}
	out := make([]StatusCount, 0, len(counts))
	for _, status := range statuses {
		if counts[status] > 0 {
			out = append(out, StatusCount{Status: string(status), Count: counts[status]})
		}
	}
	return out
}

func topPatients(sessions []schedule.Session) []PatientVolume {
	counts := make(map[uuid.UUID]*PatientVolume, len(sessions))
	order := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		if s.PatientID == uuid.Nil {
			continue
		}
		entry := counts[s.PatientID]
		if entry == nil {
			entry = &PatientVolume{PatientID: s.PatientID.String(), PatientName: s.PatientName}
			counts[s.PatientID] = entry
			order = append(order, s.PatientID)
		}
		entry.Sessions++
		if entry.PatientName == "" {
			entry.PatientName = s.PatientName
		}
	}
	ranked := make([]PatientVolume, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *counts[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Sessions > ranked[j].Sessions })
	if len(ranked) > topPatientsLimit {
		ranked = ranked[:topPatientsLimit]
	}
	return ranked
}
