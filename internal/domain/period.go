package domain

import (
	"fmt"
	"time"
)

const (
	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"
)

// MonthKey is a YYYY-MM bucket. The zero-padded layout makes string
// comparison match calendar order.
type MonthKey string

// MonthOf returns the bucket containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.Format(MonthLayout))
}

// DateKey is a calendar day without a time component.
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) DateKey {
	y, m, d := t.Date()
	return DateKey{Year: y, Month: m, Day: d}
}

// MonthKey returns the bucket this day belongs to.
func (d DateKey) MonthKey() MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", d.Year, int(d.Month)))
}

func (d DateKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthSpan lists every month from the one containing start through the one
// containing end, inclusive. It returns nil when end precedes start's month.
func MonthSpan(start, end time.Time) []MonthKey {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []MonthKey
	for !cur.After(last) {
		months = append(months, MonthOf(cur))
		// Stepping from day 1 keeps AddDate from normalising into the
		// month after next.
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// MonthRange returns the months spanned by the earliest and latest message.
// Messages need not be ordered. An empty slice yields an empty range.
func MonthRange(msgs []Message) []MonthKey {
	if len(msgs) == 0 {
		return nil
	}

	minTS, maxTS := msgs[0].Timestamp, msgs[0].Timestamp
	for _, m := range msgs[1:] {
		if m.Timestamp.Before(minTS) {
			minTS = m.Timestamp
		}
		if m.Timestamp.After(maxTS) {
			maxTS = m.Timestamp
		}
	}
	return MonthSpan(minTS, maxTS)
}
