package ministream

import (
	"context"
	"strings"
)

// Collect drains the Stream to completion and returns every item it
// emitted, in order, plus the aggregate size of those items (0 in Object
// mode). It rejects with whatever error or destroy
// reason ended the stream early.
func (s *Stream) Collect(ctx context.Context) ([]any, int, error) {
	var items []any
	dataLength := 0
	for {
		item, ok, err := s.Next(ctx)
		if err != nil {
			return items, dataLength, err
		}
		if !ok {
			return items, dataLength, nil
		}
		items = append(items, item)
		if s.mode != ModeObject {
			dataLength += sizeOf(s.mode, item)
		}
	}
}

// Concat is Collect plus merging the result into a single string (Text
// mode) or byte slice (Bytes mode). It is a usage error in Object mode.
func (s *Stream) Concat(ctx context.Context) (any, error) {
	if s.Mode() == ModeObject {
		return nil, ErrConcatObjectMode
	}

	items, _, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	switch s.Mode() {
	case ModeText:
		var sb strings.Builder
		for _, it := range items {
			sb.WriteString(it.(string))
		}
		return sb.String(), nil
	default:
		total := 0
		for _, it := range items {
			total += len(it.([]byte))
		}
		out := make([]byte, 0, total)
		for _, it := range items {
			out = append(out, it.([]byte)...)
		}
		return out, nil
	}
}

// Promise blocks until the Stream reaches end, returning the error or
// destroy reason if it instead errored or was destroyed first.
func (s *Stream) Promise(ctx context.Context) error {
	for {
		_, ok, err := s.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}
