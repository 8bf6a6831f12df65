// Command streamtap demonstrates the full pipeline: a Gemini streaming
// response feeds a Text-mode Stream, whose live state is shown in a
// terminal UI while every delta is also accumulated, then the complete
// text is rendered as markdown once the stream ends.
//
// The accumulation happens through its own data listener rather than
// through mdcollect.Render/Concat: a Stream has exactly one consumption
// mode at a time, so the live view (a data listener) and a pull-based
// Collect over the same Stream can't run concurrently. mdcollect is
// exercised directly against its own Streams instead; see its tests.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gostreams/ministream"
	"github.com/gostreams/ministream/genaisource"
	"github.com/gostreams/ministream/goldmark"
	"github.com/gostreams/ministream/tuiview"
	"google.golang.org/genai"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "streamtap:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	prompt := "Write three sentences about streaming data pipelines."
	if len(os.Args) > 1 {
		prompt = os.Args[1]
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("genai: %w", err)
	}

	s, err := ministream.New(ministream.Options{Encoding: ministream.EncodingUTF8})
	if err != nil {
		return fmt.Errorf("ministream: %w", err)
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	respIter := client.Models.GenerateContentStream(ctx, "gemini-3.1-pro-preview", contents, nil)

	var full strings.Builder
	s.On(ministream.EventData, func(args ...any) {
		if len(args) > 0 {
			if text, ok := args[0].(string); ok {
				full.WriteString(text)
			}
		}
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- genaisource.Pipe(ctx, respIter, s)
	}()

	if err := tuiview.Run(ctx, tuiview.New(s)); err != nil {
		return fmt.Errorf("tuiview: %w", err)
	}

	if err := <-errCh; err != nil {
		return err
	}

	fmt.Println(goldmark.Render(full.String(), 80, goldmark.DefaultTheme()))
	return nil
}
