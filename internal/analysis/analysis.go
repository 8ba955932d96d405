// Package analysis computes monthly statistics over a parsed transcript.
//
// All functions are pure. Callers must pass messages in non-decreasing
// time order; the parser preserves export order and exports are
// chronological. CheckOrder can verify this.
package analysis

import (
	"github.com/joern1811/chatstats/internal/domain"
)

// FirstMessages counts, per month, the days on which the recipient wrote.
// Only the first recipient message of each day counts, so the result
// depends on message order. Every month in months starts at zero.
func FirstMessages(msgs []domain.Message, months []domain.MonthKey) map[domain.MonthKey]int {
	counts := make(map[domain.MonthKey]int, len(months))
	for _, m := range months {
		counts[m] = 0
	}

	seen := make(map[domain.DateKey]struct{})
	for _, msg := range msgs {
		if msg.Identity != domain.Recipient {
			continue
		}
		day := domain.DateOf(msg.Timestamp)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		counts[day.MonthKey()]++
	}
	return counts
}

type dayPresence struct {
	sender    bool
	recipient bool
}

// Replies classifies every day with a sender message by whether the
// recipient also wrote that day. Months without sender days are absent
// from the result. Messages outside months are ignored.
func Replies(msgs []domain.Message, months []domain.MonthKey) map[domain.MonthKey]domain.ReplyCount {
	inRange := make(map[domain.MonthKey]struct{}, len(months))
	for _, m := range months {
		inRange[m] = struct{}{}
	}

	days := make(map[domain.DateKey]*dayPresence)
	for _, msg := range msgs {
		if msg.Identity == domain.Unknown {
			continue
		}
		day := domain.DateOf(msg.Timestamp)
		p, ok := days[day]
		if !ok {
			p = &dayPresence{}
			days[day] = p
		}
		switch msg.Identity {
		case domain.Sender:
			p.sender = true
		case domain.Recipient:
			p.recipient = true
		}
	}

	counts := make(map[domain.MonthKey]domain.ReplyCount)
	for day, p := range days {
		if !p.sender {
			continue
		}
		month := day.MonthKey()
		if _, ok := inRange[month]; !ok {
			continue
		}
		c := counts[month]
		if p.recipient {
			c.WithReply++
		} else {
			c.WithoutReply++
		}
		counts[month] = c
	}
	return counts
}

// CheckOrder returns the index of the first message that is earlier than
// its predecessor, or -1 when msgs is non-decreasing in time.
func CheckOrder(msgs []domain.Message) int {
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			return i
		}
	}
	return -1
}

// Analyze runs both analyzers over a transcript. An empty transcript
// yields an empty range and empty mappings.
func Analyze(t *domain.Transcript) *domain.Report {
	r := &domain.Report{
		FirstMessages: map[domain.MonthKey]int{},
		Replies:       map[domain.MonthKey]domain.ReplyCount{},
		Messages:      len(t.Messages),
		Skipped:       t.Skipped,
	}
	if len(t.Messages) == 0 {
		return r
	}

	r.Months = domain.MonthRange(t.Messages)
	r.FirstMessages = FirstMessages(t.Messages, r.Months)
	r.Replies = Replies(t.Messages, r.Months)
	return r
}
