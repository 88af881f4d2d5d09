package schedule

import "time"

// MonthKeys returns the distinct calendar months spanning [start, end],
// inclusive of both endpoints' months. Sessions are stored and fetched in
// monthly batches, so a window crossing a month boundary needs one key per
// month touched.
func MonthKeys(start, end time.Time) []MonthKey {
	if end.Before(start) {
		return nil
	}
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	keys := make([]MonthKey, 0, 4)
	for !cursor.After(last) {
		keys = append(keys, MonthKey{Year: cursor.Year(), Month: cursor.Month()})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return keys
}
