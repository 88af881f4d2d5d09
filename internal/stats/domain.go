package stats

// Totals summarises the reconciled ledger by payment status. Every item
// contributes to the total row and to exactly one status row.
type Totals struct {
	TotalAmount   float64 `json:"total_amount"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
	OverdueAmount float64 `json:"overdue_amount"`
	TotalCount    int     `json:"total_count"`
	PaidCount     int     `json:"paid_count"`
	PendingCount  int     `json:"pending_count"`
	OverdueCount  int     `json:"overdue_count"`
}

// SeriesPoint is one bucket of a time-keyed series. Count carries session
// volume, Amount carries money; consumers read whichever axis the series
// is about.
type SeriesPoint struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// StatusCount is one row of a categorical breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// PatientVolume ranks a patient by session count.
type PatientVolume struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Sessions    int    `json:"sessions"`
}

// Dashboard is the full aggregation result for one resolved window. It is
// a pure derivation of its inputs and safe to cache as JSON.
type Dashboard struct {
	Totals            Totals          `json:"totals"`
	CompletionRate    int             `json:"completion_rate"`
	ActivePatients    int             `json:"active_patients"`
	NewPatients       int             `json:"new_patients"`
	IncomeOverTime    []SeriesPoint   `json:"income_over_time"`
	SessionsOverTime  []SeriesPoint   `json:"sessions_over_time"`
	SessionsByHour    []SeriesPoint   `json:"sessions_by_hour"`
	SessionsByWeekday []SeriesPoint   `json:"sessions_by_weekday"`
	SessionsByStatus  []StatusCount   `json:"sessions_by_status"`
	PaymentsByStatus  []StatusCount   `json:"payments_by_status"`
	TopPatients       []PatientVolume `json:"top_patients"`
}
