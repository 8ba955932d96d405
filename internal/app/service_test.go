package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joern1811/chatstats/internal/adapter/parser"
	"github.com/joern1811/chatstats/internal/adapter/renderer"
	"github.com/joern1811/chatstats/internal/domain"
)

const transcript = "01/01/2024, 10:00 - Alice: hi\n" +
	"01/01/2024, 10:05 - Bob: hello\n" +
	"02/01/2024, 09:00 - Bob: morning\n" +
	"15/03/2024, 09:00 - Alice: anyone?\n"

var people = domain.Participants{Sender: "Alice", Recipient: "Bob"}

type memSource map[string]string

func (m memSource) Open(_ context.Context, ref string) (string, error) {
	content, ok := m[ref]
	if !ok {
		return "", errors.New("not found")
	}
	return content, nil
}

type recordingSink struct {
	reports []*domain.Report
	err     error
}

func (r *recordingSink) Save(_ context.Context, _ *domain.Transcript, report *domain.Report) error {
	r.reports = append(r.reports, report)
	return r.err
}

func newTestService(sinks ...domain.ReportSink) *AnalysisService {
	factory := func(p domain.Participants, logger zerolog.Logger) domain.TranscriptParser {
		return parser.NewWhatsAppParser(p, logger)
	}
	svc := NewAnalysisService(memSource{"chat.txt": transcript}, factory, zerolog.Nop(), sinks...)
	svc.now = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "run-1" }
	return svc
}

func TestRun(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(sink)

	report, err := svc.Run(context.Background(), Request{Ref: "chat.txt", Participants: people})
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "chat.txt", report.Source)
	assert.Equal(t, people, report.Participants)
	assert.Equal(t, []domain.MonthKey{"2024-01", "2024-02", "2024-03"}, report.Months)
	assert.Equal(t, map[domain.MonthKey]int{"2024-01": 2, "2024-02": 0, "2024-03": 0}, report.FirstMessages)
	assert.Equal(t, map[domain.MonthKey]domain.ReplyCount{
		"2024-01": {WithReply: 1},
		"2024-03": {WithoutReply: 1},
	}, report.Replies)
	require.Len(t, sink.reports, 1)
	assert.Same(t, report, sink.reports[0])
}

func TestRunWithTimeFilter(t *testing.T) {
	svc := newTestService()
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)

	report, err := svc.Run(context.Background(), Request{Ref: "chat.txt", Participants: people, From: &from, To: &to})
	require.NoError(t, err)

	assert.Equal(t, []domain.MonthKey{"2024-01"}, report.Months)
	assert.Equal(t, 1, report.Messages)
	assert.Empty(t, report.Replies)
}

func TestRunSourceError(t *testing.T) {
	_, err := newTestService().Run(context.Background(), Request{Ref: "missing.txt", Participants: people})
	assert.ErrorContains(t, err, "reading transcript")
}

func TestAnalyzeSinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	_, err := newTestService(sink).Analyze(context.Background(), Request{Participants: people}, transcript)
	assert.ErrorContains(t, err, "disk full")
}

func TestAnalyzeMalformedOnly(t *testing.T) {
	report, err := newTestService().Analyze(context.Background(), Request{Participants: people}, "junk\nmore junk\n")
	require.NoError(t, err)
	assert.Zero(t, report.Messages)
	assert.Empty(t, report.Months)
	assert.Empty(t, report.FirstMessages)
	assert.Empty(t, report.Replies)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService().Analyze(ctx, Request{Participants: people}, transcript)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeWarnsOnUnorderedInput(t *testing.T) {
	var buf bytes.Buffer
	svc := newTestService()
	svc.logger = zerolog.New(&buf)

	_, err := svc.Analyze(context.Background(), Request{Participants: people},
		"02/01/2024, 09:00 - Bob: later\n01/01/2024, 09:00 - Bob: earlier")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "not chronological")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestProcess(t *testing.T) {
	svc := newTestService()
	req := Request{Ref: "chat.txt", Participants: people}

	var buf bytes.Buffer
	require.NoError(t, svc.Process(context.Background(), req, renderer.CSVRenderer{}, &buf))
	assert.Contains(t, buf.String(), "2024-01,2\n")

	err := svc.Process(context.Background(), req, renderer.CSVRenderer{}, failingWriter{})
	assert.ErrorContains(t, err, "rendering report")
}

func TestAnalyzeParserWarningsCarryRunID(t *testing.T) {
	var buf bytes.Buffer
	svc := newTestService()
	svc.logger = zerolog.New(&buf)

	_, err := svc.Analyze(context.Background(), Request{Ref: "chat.txt", Participants: people},
		"31/04/2024, 10:00 - Alice: hi\n01/04/2024, 10:00 - Alice: hi")
	require.NoError(t, err)

	var dropped string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "dropping line") {
			dropped = line
		}
	}
	require.NotEmpty(t, dropped)
	assert.Contains(t, dropped, `"run_id":"run-1"`)
	assert.Contains(t, dropped, `"source":"chat.txt"`)
	assert.Contains(t, dropped, `"component":"parser"`)
}
