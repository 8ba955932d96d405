package renderer

import (
	"encoding/json"
	"io"

	"github.com/joern1811/chatstats/internal/domain"
)

// Document is the JSON shape of a report, shared with the HTTP API.
type Document struct {
	RunID         string                   `json:"run_id,omitempty"`
	Source        string                   `json:"source,omitempty"`
	Sender        string                   `json:"sender"`
	Recipient     string                   `json:"recipient"`
	Messages      int                      `json:"messages"`
	Skipped       int                      `json:"skipped"`
	Months        []domain.MonthKey        `json:"months"`
	FirstMessages []domain.FirstMessageRow `json:"first_messages"`
	Replies       []domain.ReplyRow        `json:"replies"`
}

// NewDocument projects a report onto its JSON shape.
func NewDocument(report *domain.Report) Document {
	months := report.Months
	if months == nil {
		months = []domain.MonthKey{}
	}
	return Document{
		RunID:         report.RunID,
		Source:        report.Source,
		Sender:        report.Participants.Sender,
		Recipient:     report.Participants.Recipient,
		Messages:      report.Messages,
		Skipped:       report.Skipped,
		Months:        months,
		FirstMessages: report.FirstMessageRows(),
		Replies:       report.ReplyRows(),
	}
}

type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, report *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(report))
}
