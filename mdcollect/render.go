// Package mdcollect renders the fully collected text of a Text-mode
// Stream as ANSI-styled markdown, for display once streaming has
// finished.
package mdcollect

import (
	"context"
	"fmt"

	"github.com/gostreams/ministream"
	"github.com/gostreams/ministream/goldmark"
)

// Render drains s to completion via Concat and renders the collected
// text as markdown at width columns using theme. s must be a Text-mode
// Stream; any other mode is a usage error.
func Render(ctx context.Context, s *ministream.Stream, width int, theme goldmark.Theme) (string, error) {
	if s.Mode() != ministream.ModeText {
		return "", fmt.Errorf("mdcollect: Render requires a Text-mode Stream, got %s", s.Mode())
	}
	v, err := s.Concat(ctx)
	if err != nil {
		return "", fmt.Errorf("mdcollect: %w", err)
	}
	text, _ := v.(string)
	return goldmark.Render(text, width, theme), nil
}
