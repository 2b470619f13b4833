package service

import "time"

// SettlementWindow returns the default window the external settlement batch
// reads: yesterday 00:00 up to today 00:00 in the given location. The batch
// itself runs elsewhere; the lifecycle guarantees that reservations inside
// the window that are completed with payment_status paid never mutate
// again, so the read is stable.
func SettlementWindow(now time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	end = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start = end.AddDate(0, 0, -1)
	return start, end
}
