package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/patient"
	"github.com/praxis-pm/praxis/internal/schedule"
)

func marchWindow() ledger.Range {
	return ledger.Range{
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC),
	}
}

func sessionOn(at time.Time, status schedule.SessionStatus, pid uuid.UUID, name string) schedule.Session {
	return schedule.Session{
		ID:            uuid.New(),
		ScheduledFrom: at,
		ScheduledTo:   at.Add(time.Hour),
		Status:        status,
		PatientID:     pid,
		PatientName:   name,
		Cost:          6000,
	}
}

func TestAggregateTotalsFromMixedLedger(t *testing.T) {
	items := []ledger.Item{
		{ID: "virtual-s1", IsVirtual: true, Status: billing.StatusPending, Amount: 6000},
		{ID: "p1", Status: billing.StatusPaid, Amount: 7500},
	}
	got := Aggregate(Input{Tag: ledger.RangeMonth, Range: marchWindow(), Items: items}).Totals

	want := Totals{
		TotalAmount:   13500,
		PaidAmount:    7500,
		PendingAmount: 6000,
		OverdueAmount: 0,
		TotalCount:    2,
		PaidCount:     1,
		PendingCount:  1,
		OverdueCount:  0,
	}
	if got != want {
		t.Fatalf("unexpected totals: got %+v want %+v", got, want)
	}
}

func TestCompletionRateRoundsAndHandlesEmpty(t *testing.T) {
	if rate := completionRate(nil); rate != 0 {
		t.Fatalf("expected 0 for empty input, got %d", rate)
	}
	day := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	pid := uuid.New()
	sessions := []schedule.Session{
		sessionOn(day, schedule.StatusCompleted, pid, "A"),
		sessionOn(day, schedule.StatusCompleted, pid, "A"),
		sessionOn(day, schedule.StatusCancelled, pid, "A"),
	}
	if rate := completionRate(sessions); rate != 67 {
		t.Fatalf("expected 67, got %d", rate)
	}
}

func TestActivePatientsCountsDistinctIDs(t *testing.T) {
	day := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()
	sessions := []schedule.Session{
		sessionOn(day, schedule.StatusCompleted, first, "A"),
		sessionOn(day, schedule.StatusPending, first, "A"),
		sessionOn(day, schedule.StatusPending, second, "B"),
	}
	if got := activePatients(sessions); got != 2 {
		t.Fatalf("expected 2 active patients, got %d", got)
	}
}

func TestNewPatientsUsesCreationWindow(t *testing.T) {
	rng := marchWindow()
	patients := []patient.Patient{
		{ID: uuid.New(), CreatedAt: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), CreatedAt: time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), CreatedAt: rng.End},
		{ID: uuid.New()},
	}
	if got := newPatients(patients, rng); got != 2 {
		t.Fatalf("expected 2 new patients, got %d", got)
	}
}

func TestTimeSeriesWeekRangeBucketsByDay(t *testing.T) {
	samples := []sample{
		{at: time.Date(2024, time.March, 9, 9, 0, 0, 0, time.UTC), amount: 100},
		{at: time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC), amount: 200},
		{at: time.Date(2024, time.March, 11, 17, 0, 0, 0, time.UTC), amount: 50},
	}
	points := timeSeries(ledger.RangeWeek, samples)
	if len(points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(points))
	}
	if points[0].Label != "9/3" || points[1].Label != "11/3" {
		t.Fatalf("unexpected labels %q %q", points[0].Label, points[1].Label)
	}
	if points[1].Count != 2 || points[1].Amount != 250 {
		t.Fatalf("unexpected accumulation %+v", points[1])
	}
}

func TestTimeSeriesMonthRangeBucketsByWeekOfMonth(t *testing.T) {
	samples := []sample{
		{at: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)},
		{at: time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC)},
		{at: time.Date(2024, time.March, 8, 9, 0, 0, 0, time.UTC)},
		{at: time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC)},
	}
	points := timeSeries(ledger.RangeMonth, samples)
	if len(points) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(points))
	}
	if points[0].Label != "Week 1" || points[0].Count != 2 {
		t.Fatalf("unexpected first bucket %+v", points[0])
	}
	if points[1].Label != "Week 2" {
		t.Fatalf("unexpected second bucket %+v", points[1])
	}
	if points[2].Label != "Week 5" {
		t.Fatalf("unexpected last bucket %+v", points[2])
	}
}

func TestTimeSeriesQuarterRangeOrdersAcrossYearBoundary(t *testing.T) {
	samples := []sample{
		{at: time.Date(2024, time.January, 5, 9, 0, 0, 0, time.UTC)},
		{at: time.Date(2023, time.November, 5, 9, 0, 0, 0, time.UTC)},
		{at: time.Date(2023, time.December, 5, 9, 0, 0, 0, time.UTC)},
	}
	points := timeSeries(ledger.RangeQuarter, samples)
	if len(points) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(points))
	}
	if points[0].Label != "November" || points[1].Label != "December" || points[2].Label != "January" {
		t.Fatalf("unexpected month order: %+v", points)
	}
}

func TestSessionsByHourAlwaysEmitsThirteenRows(t *testing.T) {
	points := sessionsByHour(nil)
	if len(points) != 13 {
		t.Fatalf("expected 13 rows, got %d", len(points))
	}
	if points[0].Label != "08:00" || points[12].Label != "20:00" {
		t.Fatalf("unexpected bounds %q %q", points[0].Label, points[12].Label)
	}

	pid := uuid.New()
	sessions := []schedule.Session{
		sessionOn(time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC), schedule.StatusPending, pid, "A"),
		sessionOn(time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC), schedule.StatusPending, pid, "A"),
		sessionOn(time.Date(2024, time.March, 5, 7, 0, 0, 0, time.UTC), schedule.StatusPending, pid, "A"),
	}
	points = sessionsByHour(sessions)
	if points[1].Label != "09:00" || points[1].Count != 2 {
		t.Fatalf("unexpected 09:00 bucket %+v", points[1])
	}
	var total int
	for _, p := range points {
		total += p.Count
	}
	if total != 2 {
		t.Fatalf("expected out-of-hours session to be dropped, counted %d", total)
	}
}

func TestSessionsByWeekdayIsMondayFirst(t *testing.T) {
	pid := uuid.New()
	monday := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC)
	points := sessionsByWeekday([]schedule.Session{
		sessionOn(monday, schedule.StatusPending, pid, "A"),
		sessionOn(sunday, schedule.StatusPending, pid, "A"),
	})
	if len(points) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(points))
	}
	if points[0].Label != "Monday" || points[0].Count != 1 {
		t.Fatalf("unexpected monday row %+v", points[0])
	}
	if points[6].Label != "Sunday" || points[6].Count != 1 {
		t.Fatalf("unexpected sunday row %+v", points[6])
	}
}

func TestSessionsByStatusOmitsZeroRows(t *testing.T) {
	day := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	pid := uuid.New()
	rows := sessionsByStatus([]schedule.Session{
		sessionOn(day, schedule.StatusCompleted, pid, "A"),
		sessionOn(day, schedule.StatusCompleted, pid, "A"),
	})
	if len(rows) != 1 {
		t.Fatalf("expected single status row, got %+v", rows)
	}
	if rows[0].Status != string(schedule.StatusCompleted) || rows[0].Count != 2 {
		t.Fatalf("unexpected row %+v", rows[0])
	}
}

func TestPaymentsByStatusSkipsProjectedItems(t *testing.T) {
	rows := paymentsByStatus([]ledger.Item{
		{ID: "p1", Status: billing.StatusPaid},
		{ID: "virtual-x", IsVirtual: true, Status: billing.StatusPending},
	})
	if len(rows) != 1 || rows[0].Status != string(billing.StatusPaid) {
		t.Fatalf("unexpected breakdown %+v", rows)
	}
}

func TestTopPatientsRanksWithStableTies(t *testing.T) {
	day := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
	}
	var sessions []schedule.Session
	// Patient 0 has three sessions, patients 1 and 2 tie on two, the rest one.
	for i, n := range []int{3, 2, 2, 1, 1, 1} {
		for j := 0; j < n; j++ {
			sessions = append(sessions, sessionOn(day, schedule.StatusCompleted, ids[i], "P"))
		}
	}
	top := topPatients(sessions)
	if len(top) != topPatientsLimit {
		t.Fatalf("expected %d entries, got %d", topPatientsLimit, len(top))
	}
	if top[0].PatientID != ids[0].String() || top[0].Sessions != 3 {
		t.Fatalf("unexpected leader %+v", top[0])
	}
	if top[1].PatientID != ids[1].String() || top[2].PatientID != ids[2].String() {
		t.Fatalf("tie should keep first-encountered order: %+v", top[:3])
	}
}
