package renderer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joern1811/chatstats/internal/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		RunID:        "run-1",
		Participants: domain.Participants{Sender: "Alice", Recipient: "Bob"},
		Months:       []domain.MonthKey{"2024-01", "2024-02"},
		FirstMessages: map[domain.MonthKey]int{
			"2024-01": 2,
			"2024-02": 0,
		},
		Replies: map[domain.MonthKey]domain.ReplyCount{
			"2024-01": {WithoutReply: 3, WithReply: 1},
		},
		Messages: 12,
		Skipped:  1,
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextRenderer{}).Render(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "First message of the day by Bob")
	assert.Contains(t, out, "Same-day replies to Alice")
	assert.Contains(t, out, "First Messages Count")
	assert.Contains(t, out, "2024-02")
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextRenderer{Markdown: true}).Render(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "| Month | First Messages Count |\n| --- | --- |\n| 2024-01 | 2 |\n| 2024-02 | 0 |\n")
	assert.Contains(t, out, "| 2024-01 | 3 | 1 |\n")
	assert.NotContains(t, out, "| 2024-02 | 0 | 0 |")
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVRenderer{}.Render(&buf, sampleReport()))

	want := "Month,First Messages Count\n" +
		"2024-01,2\n" +
		"2024-02,0\n" +
		"\n" +
		"Month,Messages without Reply,Messages with Reply\n" +
		"2024-01,3,1\n"
	assert.Equal(t, want, buf.String())
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONRenderer{}.Render(&buf, sampleReport()))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, 12, doc.Messages)
	assert.Len(t, doc.FirstMessages, 2)
	require.Len(t, doc.Replies, 1)
	assert.Equal(t, 3, doc.Replies[0].WithoutReply)
	assert.Contains(t, buf.String(), `"without_reply": 3`)
}

func TestJSONRendererEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONRenderer{}.Render(&buf, &domain.Report{}))

	assert.Contains(t, buf.String(), `"months": []`)
	assert.Contains(t, buf.String(), `"first_messages": []`)
	assert.Contains(t, buf.String(), `"replies": []`)
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		r, err := New(f)
		require.NoError(t, err, f)
		assert.NotNil(t, r)
	}

	_, err := New("xml")
	assert.Error(t, err)
}
