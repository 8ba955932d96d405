package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/joern1811/chatstats/internal/domain"
)

// Router dispatches s3:// refs to the S3 source and everything else to the
// local filesystem.
type Router struct {
	Local domain.TranscriptSource
	S3    domain.TranscriptSource // nil when S3 is not configured
}

func (r *Router) Open(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, s3Scheme) {
		if r.S3 == nil {
			return "", fmt.Errorf("%w: S3 is not configured for %q", ErrUnsupportedRef, ref)
		}
		return r.S3.Open(ctx, ref)
	}
	return r.Local.Open(ctx, ref)
}
