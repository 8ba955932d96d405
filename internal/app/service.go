package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joern1811/chatstats/internal/analysis"
	"github.com/joern1811/chatstats/internal/domain"
	"github.com/joern1811/chatstats/internal/log"
)

// ParserFactory builds a parser for one pair of participants that reports
// dropped lines to logger.
type ParserFactory func(domain.Participants, zerolog.Logger) domain.TranscriptParser

// Request describes one analysis run.
type Request struct {
	Ref          string // transcript reference handed to the source
	Participants domain.Participants
	From, To     *time.Time // optional bounds, nil means unbounded
}

// AnalysisService orchestrates the analysis pipeline.
type AnalysisService struct {
	source    domain.TranscriptSource
	newParser ParserFactory
	sinks     []domain.ReportSink
	logger    zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewAnalysisService(source domain.TranscriptSource, newParser ParserFactory, logger zerolog.Logger, sinks ...domain.ReportSink) *AnalysisService {
	return &AnalysisService{
		source:    source,
		newParser: newParser,
		sinks:     sinks,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Process runs the full pipeline: acquire → parse → filter → analyze → store → render.
func (s *AnalysisService) Process(ctx context.Context, req Request, renderer domain.ReportRenderer, w io.Writer) error {
	report, err := s.Run(ctx, req)
	if err != nil {
		return err
	}
	if err := renderer.Render(w, report); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// Run acquires the transcript named by req.Ref and analyzes it.
func (s *AnalysisService) Run(ctx context.Context, req Request) (*domain.Report, error) {
	content, err := s.source.Open(ctx, req.Ref)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return s.Analyze(ctx, req, content)
}

// Analyze parses content and builds a report. Malformed lines never cause
// an error; only cancellation and sink failures do.
func (s *AnalysisService) Analyze(ctx context.Context, req Request, content string) (*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := s.newID()
	logger := log.Ctx(ctx, s.logger).With().
		Str(log.FieldRunID, runID).
		Str(log.FieldSource, req.Ref).
		Logger()

	transcript := s.newParser(req.Participants, logger).Parse(content)

	// Apply time filter before analysis so month ranges follow the window
	if req.From != nil || req.To != nil {
		transcript = transcript.Filter(req.From, req.To)
	}

	if i := analysis.CheckOrder(transcript.Messages); i >= 0 {
		logger.Warn().
			Int("index", i).
			Time("timestamp", transcript.Messages[i].Timestamp).
			Msg("transcript is not chronological; first-message counts may be off")
	}

	report := analysis.Analyze(transcript)
	report.RunID = runID
	report.CreatedAt = s.now()
	report.Source = req.Ref
	report.Participants = req.Participants

	if report.Messages == 0 {
		logger.Warn().Msg("no messages to analyze")
	}

	for _, sink := range s.sinks {
		if err := sink.Save(ctx, transcript, report); err != nil {
			return nil, fmt.Errorf("saving report: %w", err)
		}
	}

	logger.Info().
		Int("messages", report.Messages).
		Int("months", len(report.Months)).
		Msg("analysis completed")
	return report, nil
}
