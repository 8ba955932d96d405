package domain

import (
	"slices"
	"time"
)

// ReplyCount holds, for one month, the number of days on which the sender
// wrote and the recipient did or did not write on the same day.
type ReplyCount struct {
	WithoutReply int `json:"without_reply"`
	WithReply    int `json:"with_reply"`
}

// Report is the result of one analysis run.
type Report struct {
	RunID        string
	CreatedAt    time.Time
	Source       string
	Participants Participants

	Months        []MonthKey
	FirstMessages map[MonthKey]int
	Replies       map[MonthKey]ReplyCount

	Messages int
	Skipped  int
}

// FirstMessageRow is one row of the first-message table.
type FirstMessageRow struct {
	Month MonthKey `json:"month"`
	Count int      `json:"count"`
}

// ReplyRow is one row of the reply table.
type ReplyRow struct {
	Month MonthKey `json:"month"`
	ReplyCount
}

// FirstMessageRows returns one row per month in range, ascending.
func (r *Report) FirstMessageRows() []FirstMessageRow {
	rows := make([]FirstMessageRow, 0, len(r.Months))
	for _, m := range r.Months {
		rows = append(rows, FirstMessageRow{Month: m, Count: r.FirstMessages[m]})
	}
	return rows
}

// ReplyRows returns one row per month with at least one sender day, ascending.
func (r *Report) ReplyRows() []ReplyRow {
	months := make([]MonthKey, 0, len(r.Replies))
	for m := range r.Replies {
		months = append(months, m)
	}
	slices.Sort(months)

	rows := make([]ReplyRow, 0, len(months))
	for _, m := range months {
		rows = append(rows, ReplyRow{Month: m, ReplyCount: r.Replies[m]})
	}
	return rows
}
