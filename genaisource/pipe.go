// Package genaisource adapts a Gemini streaming response into a
// Text-mode ministream.Stream, one text delta per Write.
package genaisource

import (
	"context"
	"fmt"
	"iter"

	"github.com/gostreams/ministream"
	"google.golang.org/genai"
)

// Pipe pulls every response chunk from respIter and writes its text onto
// dst, ending dst when the iterator is exhausted. It blocks until the
// iterator is drained, ctx is done, or dst rejects a write. Chunks with
// no text (e.g. pure function-call deltas) are skipped.
func Pipe(ctx context.Context, respIter iter.Seq2[*genai.GenerateContentResponse, error], dst *ministream.Stream) error {
	next, stop := iter.Pull2(respIter)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			dst.Destroy(ctx.Err())
			return ctx.Err()
		default:
		}

		resp, err, ok := next()
		if !ok {
			return dst.End()
		}
		if err != nil {
			werr := fmt.Errorf("genaisource: %w", err)
			dst.Destroy(werr)
			return werr
		}

		text := resp.Text()
		if text == "" {
			continue
		}
		if _, werr := dst.Write(text); werr != nil {
			return fmt.Errorf("genaisource: %w", werr)
		}
	}
}
