package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/joern1811/chatstats/internal/adapter/renderer"
	"github.com/joern1811/chatstats/internal/app"
	"github.com/joern1811/chatstats/internal/domain"
	"github.com/joern1811/chatstats/internal/log"
)

// maxTranscriptBytes caps request bodies; transcripts are held in memory.
const maxTranscriptBytes = 64 << 20

// Analyzer runs the analysis pipeline over transcript text.
type Analyzer interface {
	Analyze(ctx context.Context, req app.Request, content string) (*domain.Report, error)
}

type AnalyzeRequest struct {
	Transcript string `json:"transcript"`
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
}

type HTTPHandler struct {
	analyzer     Analyzer
	participants domain.Participants // defaults when a request omits names
	logger       zerolog.Logger
	maxBodyBytes int64
}

func NewHTTPHandler(analyzer Analyzer, participants domain.Participants, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		analyzer:     analyzer,
		participants: participants,
		logger:       logger,
		maxBodyBytes: maxTranscriptBytes,
	}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/analyze", h.Analyze)
	}

	r.GET("/health", h.HealthCheck)
}

func (h *HTTPHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("transcript exceeds %d bytes", tooLarge.Limit))
			return
		}
		badRequest(c, "body must be JSON with a transcript field")
		return
	}

	people := h.participants
	if req.Sender != "" {
		people.Sender = req.Sender
	}
	if req.Recipient != "" {
		people.Recipient = req.Recipient
	}
	if strings.TrimSpace(people.Sender) == "" || strings.TrimSpace(people.Recipient) == "" {
		badRequest(c, "sender and recipient are required")
		return
	}

	ctx := c.Request.Context()
	report, err := h.analyzer.Analyze(ctx, app.Request{Ref: "http", Participants: people}, req.Transcript)
	if err != nil {
		l := log.Ctx(ctx, h.logger)
		l.Error().Err(err).Msg("analysis failed")
		internalError(c, "failed to analyze transcript")
		return
	}

	success(c, renderer.NewDocument(report))
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// NewEngine builds a gin engine with recovery, request logging and routes.
func NewEngine(h *HTTPHandler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(logger))
	h.RegisterRoutes(r)
	return r
}
