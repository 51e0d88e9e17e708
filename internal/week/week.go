// Package week holds the ISO-8601 week arithmetic the prediction and
// access layers bucket by. All computations are UTC.
package week

import (
	"fmt"
	"time"
)

// Segment classifies a match date inside its ISO week.
type Segment string

const (
	SegmentMidWeek Segment = "mid-week"
	SegmentWeekend Segment = "weekend"
)

// ID returns the ISO-8601 week identifier ("YYYY-Www") for the given date.
func ID(date time.Time) string {
	year, wk := date.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, wk)
}

// DateOfISOWeek returns the Monday (00:00:00 UTC) of the given ISO week.
// January 4th is always inside week 1, which anchors the computation.
func DateOfISOWeek(weekNum, year int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -(isoWeekday(jan4) - 1))
	return monday.AddDate(0, 0, (weekNum-1)*7)
}

// SegmentOf classifies the date's weekday: Monday through Thursday is
// mid-week, Friday through Sunday is weekend.
func SegmentOf(date time.Time) Segment {
	switch date.UTC().Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return SegmentWeekend
	default:
		return SegmentMidWeek
	}
}

// Range returns the half-open interval [Monday 00:00:00, next Monday
// 00:00:00) of the ISO week containing the date.
func Range(date time.Time) (start, end time.Time) {
	d := date.UTC()
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	start = midnight.AddDate(0, 0, -(isoWeekday(midnight) - 1))
	end = start.AddDate(0, 0, 7)
	return start, end
}

// SegmentExpiry computes the free-access expiry for a segment: the anchor
// offset is added to now, then the result rolls forward to the segment's
// closing weekday (Thursday for mid-week, Sunday for weekend) at
// 23:59:59.999 UTC. A base already on Thursday stays put, but a base on
// Sunday rolls to the following Sunday.
func SegmentExpiry(now time.Time, offset time.Duration, segment Segment) time.Time {
	base := now.UTC().Add(offset)

	var days int
	if segment == SegmentWeekend {
		days = 7 - int(base.Weekday())
	} else {
		days = (int(time.Thursday) - int(base.Weekday()) + 7) % 7
	}
	boundary := base.AddDate(0, 0, days)
	return time.Date(boundary.Year(), boundary.Month(), boundary.Day(), 23, 59, 59, 999_000_000, time.UTC)
}

// isoWeekday maps Go's Sunday-first weekday to ISO numbering (Monday=1).
func isoWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
