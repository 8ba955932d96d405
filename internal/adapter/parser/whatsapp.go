package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joern1811/chatstats/internal/domain"
	"github.com/joern1811/chatstats/internal/log"
)

// TimestampLayout is the day/month/year, 24-hour layout of the line prefix.
const TimestampLayout = "02/01/2006, 15:04"

const separator = " - "

// Message lines look like: DD/MM/YYYY, HH:MM - <content>
var lineRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}, \d{2}:\d{2} - `)

// SkipReason tells why a line produced no message.
type SkipReason int

const (
	Accepted SkipReason = iota
	// NoPrefix marks continuation, blank or otherwise foreign lines.
	NoPrefix
	// BadTimestamp marks a message prefix that is not a real date/time.
	BadTimestamp
)

func (r SkipReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case NoPrefix:
		return "no message prefix"
	case BadTimestamp:
		return "invalid timestamp"
	default:
		return "unknown"
	}
}

// LineResult is the outcome of parsing one line: a message when Skip is
// Accepted, otherwise a reason and, for timestamp failures, the cause.
type LineResult struct {
	Message domain.Message
	Skip    SkipReason
	Err     error
}

// OK reports whether the line produced a message.
func (r LineResult) OK() bool {
	return r.Skip == Accepted
}

// WhatsAppParser parses Android-style WhatsApp text exports.
type WhatsAppParser struct {
	participants domain.Participants
	logger       zerolog.Logger
}

func NewWhatsAppParser(participants domain.Participants, logger zerolog.Logger) *WhatsAppParser {
	return &WhatsAppParser{
		participants: participants,
		logger:       logger.With().Str(log.FieldComponent, "parser").Logger(),
	}
}

// Parse folds ParseLine over every line of content. Empty content yields an
// empty transcript. Accepted messages keep their line order.
func (p *WhatsAppParser) Parse(content string) *domain.Transcript {
	t := &domain.Transcript{}
	if content == "" {
		p.logger.Warn().Msg("empty transcript")
		return t
	}

	for i, line := range strings.Split(content, "\n") {
		t.Lines++

		res := p.ParseLine(line)
		switch res.Skip {
		case Accepted:
			t.Messages = append(t.Messages, res.Message)
		case BadTimestamp:
			t.Skipped++
			p.logger.Warn().
				Err(res.Err).
				Int("line", i+1).
				Str("prefix", preview(line)).
				Msg("dropping line")
		}
	}

	p.logger.Info().
		Int("lines", t.Lines).
		Int("messages", len(t.Messages)).
		Int("skipped", t.Skipped).
		Msg("transcript parsed")
	return t
}

// ParseLine decodes a single line. It has no side effects.
func (p *WhatsAppParser) ParseLine(line string) LineResult {
	line = stripInvisible(line)
	if !lineRe.MatchString(line) {
		return LineResult{Skip: NoPrefix}
	}

	datePart, rest, _ := strings.Cut(line, separator)
	ts, err := time.Parse(TimestampLayout, datePart)
	if err != nil {
		return LineResult{Skip: BadTimestamp, Err: err}
	}

	content := strings.TrimSpace(rest)
	return LineResult{
		Message: domain.Message{
			Timestamp: ts,
			Content:   content,
			Identity:  p.participants.Identify(content),
		},
	}
}

// stripInvisible removes Unicode control characters (LTR mark, zero-width spaces, etc.)
func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u200e' || r == '\u200f': // LTR / RTL mark
			return -1
		case r == '\u200b' || r == '\u200c' || r == '\u200d': // zero-width spaces
			return -1
		case r == '\ufeff': // BOM
			return -1
		default:
			return r
		}
	}, s)
}

func preview(line string) string {
	const limit = 50
	r := []rune(line)
	if len(r) <= limit {
		return line
	}
	return string(r[:limit]) + "..."
}
