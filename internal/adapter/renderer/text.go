package renderer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joern1811/chatstats/internal/domain"
)

var (
	firstMessageHeaders = []string{"Month", "First Messages Count"}
	replyHeaders        = []string{"Month", "Messages without Reply", "Messages with Reply"}
)

// TextRenderer renders both tables as bordered text, or as Markdown tables.
type TextRenderer struct {
	Markdown bool
}

func (r *TextRenderer) Render(w io.Writer, report *domain.Report) error {
	sections := []struct {
		title   string
		headers []string
		rows    [][]string
	}{
		{
			title:   fmt.Sprintf("First message of the day by %s", report.Participants.Recipient),
			headers: firstMessageHeaders,
			rows:    firstMessageCells(report),
		},
		{
			title:   fmt.Sprintf("Same-day replies to %s", report.Participants.Sender),
			headers: replyHeaders,
			rows:    replyCells(report),
		},
	}

	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		var out string
		if r.Markdown {
			out = "## " + s.title + "\n\n" + markdownTable(s.headers, s.rows)
		} else {
			out = s.title + "\n" + table.New().
				Border(lipgloss.NormalBorder()).
				Headers(s.headers...).
				Rows(s.rows...).
				String() + "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}

func markdownTable(headers []string, rows [][]string) string {
	out := markdownRow(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	out += markdownRow(sep)
	for _, row := range rows {
		out += markdownRow(row)
	}
	return out
}

func markdownRow(cells []string) string {
	line := "|"
	for _, c := range cells {
		line += " " + c + " |"
	}
	return line + "\n"
}

func firstMessageCells(report *domain.Report) [][]string {
	var rows [][]string
	for _, row := range report.FirstMessageRows() {
		rows = append(rows, []string{string(row.Month), strconv.Itoa(row.Count)})
	}
	return rows
}

func replyCells(report *domain.Report) [][]string {
	var rows [][]string
	for _, row := range report.ReplyRows() {
		rows = append(rows, []string{
			string(row.Month),
			strconv.Itoa(row.WithoutReply),
			strconv.Itoa(row.WithReply),
		})
	}
	return rows
}
