package renderer

import (
	"fmt"

	"github.com/joern1811/chatstats/internal/domain"
)

// Formats lists the accepted values for New.
var Formats = []string{"text", "markdown", "json", "csv"}

// New returns the renderer for an output format name.
func New(format string) (domain.ReportRenderer, error) {
	switch format {
	case "text", "":
		return &TextRenderer{}, nil
	case "markdown", "md":
		return &TextRenderer{Markdown: true}, nil
	case "json":
		return JSONRenderer{}, nil
	case "csv":
		return CSVRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected one of %v)", format, Formats)
	}
}
