package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joern1811/chatstats/internal/adapter/parser"
	"github.com/joern1811/chatstats/internal/adapter/renderer"
	"github.com/joern1811/chatstats/internal/app"
	"github.com/joern1811/chatstats/internal/domain"
	"github.com/joern1811/chatstats/internal/log"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memSource struct{}

func (memSource) Open(context.Context, string) (string, error) { return "", errors.New("unused") }

func newTestEngine(analyzer Analyzer) *gin.Engine {
	h := NewHTTPHandler(analyzer, domain.Participants{Sender: "Alice", Recipient: "Bob"}, zerolog.Nop())
	return NewEngine(h, zerolog.Nop())
}

func newService() *app.AnalysisService {
	factory := func(p domain.Participants, logger zerolog.Logger) domain.TranscriptParser {
		return parser.NewWhatsAppParser(p, logger)
	}
	return app.NewAnalysisService(memSource{}, factory, zerolog.Nop())
}

func post(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestAnalyze(t *testing.T) {
	r := newTestEngine(newService())
	body := `{"transcript": "01/01/2024, 10:00 - Alice: hi\n01/01/2024, 10:05 - Bob: hello\n02/01/2024, 09:00 - Bob: morning"}`

	w, resp := post(t, r, body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, w.Header().Get(log.HeaderRequestID))

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var doc renderer.Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, 3, doc.Messages)
	assert.Equal(t, []domain.FirstMessageRow{{Month: "2024-01", Count: 2}}, doc.FirstMessages)
	assert.Equal(t, []domain.ReplyRow{{Month: "2024-01", ReplyCount: domain.ReplyCount{WithReply: 1}}}, doc.Replies)
}

func TestAnalyzeOverridesParticipants(t *testing.T) {
	r := newTestEngine(newService())
	body := `{"transcript": "01/01/2024, 10:00 - Carol: hi", "sender": "Carol", "recipient": "Dave"}`

	w, resp := post(t, r, body)

	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Carol", data["sender"])
	assert.Len(t, data["replies"], 1)
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	w, resp := post(t, newTestEngine(newService()), `{"transcript": ""}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(0), data["messages"])
	assert.Empty(t, data["months"])
}

func TestAnalyzeBadBody(t *testing.T) {
	w, resp := post(t, newTestEngine(newService()), `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestAnalyzeMissingParticipants(t *testing.T) {
	h := NewHTTPHandler(newService(), domain.Participants{}, zerolog.Nop())
	w, resp := post(t, NewEngine(h, zerolog.Nop()), `{"transcript": "x", "sender": "Alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "sender and recipient are required", resp.Error.Message)
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, app.Request, string) (*domain.Report, error) {
	return nil, errors.New("boom")
}

func TestAnalyzeFailure(t *testing.T) {
	w, resp := post(t, newTestEngine(failingAnalyzer{}), `{"transcript": "x"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}

func TestHealthCheck(t *testing.T) {
	r := newTestEngine(newService())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(log.HeaderRequestID, "fixed-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "fixed-id", w.Header().Get(log.HeaderRequestID))
}

func TestAnalyzeBodyTooLarge(t *testing.T) {
	h := NewHTTPHandler(newService(), domain.Participants{Sender: "Alice", Recipient: "Bob"}, zerolog.Nop())
	h.maxBodyBytes = 32
	body := `{"transcript": "` + strings.Repeat("x", 64) + `"}`

	w, resp := post(t, NewEngine(h, zerolog.Nop()), body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", resp.Error.Code)
	assert.Equal(t, "transcript exceeds 32 bytes", resp.Error.Message)
}

func TestAnalyzeFailureIsLoggedWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTTPHandler(failingAnalyzer{}, domain.Participants{Sender: "Alice", Recipient: "Bob"}, zerolog.Nop())
	r := NewEngine(h, zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"transcript": "x"}`))
	req.Header.Set(log.HeaderRequestID, "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var failure string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "analysis failed") {
			failure = line
		}
	}
	require.NotEmpty(t, failure)
	assert.Contains(t, failure, `"request_id":"req-42"`)
	assert.Contains(t, failure, `"error":"boom"`)
}

func TestParserWarningsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTTPHandler(newService(), domain.Participants{Sender: "Alice", Recipient: "Bob"}, zerolog.Nop())
	r := NewEngine(h, zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader(`{"transcript": "31/02/2024, 10:00 - Alice: hi"}`))
	req.Header.Set(log.HeaderRequestID, "req-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var dropped string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "dropping line") {
			dropped = line
		}
	}
	require.NotEmpty(t, dropped)
	assert.Contains(t, dropped, `"request_id":"req-7"`)
	assert.Contains(t, dropped, `"run_id"`)
}
