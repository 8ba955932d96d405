package domain

import "time"

// Transcript is the ordered result of parsing one chat export.
// Messages keep the line order of the export, which is assumed to be
// chronological.
type Transcript struct {
	Messages []Message
	Lines    int // lines seen, including continuations and blanks
	Skipped  int // lines with a message prefix but an invalid timestamp
}

// Filter returns a new Transcript containing only messages within the given time range.
// nil values for from/to mean no lower/upper bound.
func (t *Transcript) Filter(from, to *time.Time) *Transcript {
	filtered := &Transcript{Lines: t.Lines, Skipped: t.Skipped}
	for _, msg := range t.Messages {
		if from != nil && msg.Timestamp.Before(*from) {
			continue
		}
		if to != nil && msg.Timestamp.After(*to) {
			continue
		}
		filtered.Messages = append(filtered.Messages, msg)
	}
	return filtered
}
