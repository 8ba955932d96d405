package renderer

import (
	"encoding/csv"
	"io"

	"github.com/joern1811/chatstats/internal/domain"
)

// CSVRenderer writes both tables as CSV, separated by a blank record.
type CSVRenderer struct{}

func (CSVRenderer) Render(w io.Writer, report *domain.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(firstMessageHeaders); err != nil {
		return err
	}
	if err := cw.WriteAll(firstMessageCells(report)); err != nil {
		return err
	}

	if err := cw.Write(nil); err != nil {
		return err
	}

	if err := cw.Write(replyHeaders); err != nil {
		return err
	}
	return cw.WriteAll(replyCells(report))
}
