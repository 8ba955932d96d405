package domain

import (
	"context"
	"io"
)

// TranscriptSource fetches the raw text of a chat export.
type TranscriptSource interface {
	Open(ctx context.Context, ref string) (string, error)
}

// TranscriptParser turns raw export text into a Transcript.
type TranscriptParser interface {
	Parse(content string) *Transcript
}

// ReportRenderer renders a Report to an output writer.
type ReportRenderer interface {
	Render(w io.Writer, report *Report) error
}

// ReportSink persists a Report together with the messages it was built from.
type ReportSink interface {
	Save(ctx context.Context, transcript *Transcript, report *Report) error
}
