package ministream

import (
	"strings"
	"unicode/utf8"
)

// Buffer is an ordered queue of pending payload items plus a cached
// aggregate size. Len is exact at all times; it is never recomputed
// lazily from items.
type Buffer struct {
	mode   Mode
	items  []any
	length int
}

func newBuffer(mode Mode) *Buffer {
	return &Buffer{mode: mode}
}

// Len returns the cached aggregate size: total byte length (Bytes), total
// rune count (Text), or item count (Object).
func (b *Buffer) Len() int { return b.length }

// Empty reports whether the buffer holds no items.
func (b *Buffer) Empty() bool { return len(b.items) == 0 }

// Count returns the number of buffered items, distinct from Len (which is
// the size metric, not the item count).
func (b *Buffer) Count() int { return len(b.items) }

func (b *Buffer) push(item any) {
	b.items = append(b.items, item)
	b.length += sizeOf(b.mode, item)
}

func (b *Buffer) shift() (any, bool) {
	if len(b.items) == 0 {
		return nil, false
	}
	item := b.items[0]
	b.items = b.items[1:]
	b.length -= sizeOf(b.mode, item)
	return item, true
}

// unshift re-inserts an item at the head, growing Len. Used to push back a
// retained suffix when read(n) splits the head item.
func (b *Buffer) unshift(item any) {
	b.items = append([]any{item}, b.items...)
	b.length += sizeOf(b.mode, item)
}

// coalesce merges every buffered item into a single one, for Bytes/Text
// modes only. It is used exclusively by the read(n) slow
// path; Object mode is a no-op since objects are never merged.
func (b *Buffer) coalesce() {
	if b.mode == ModeObject || len(b.items) < 2 {
		return
	}
	switch b.mode {
	case ModeText:
		var sb strings.Builder
		for _, it := range b.items {
			sb.WriteString(it.(string))
		}
		b.items = []any{sb.String()}
	case ModeBytes:
		total := 0
		for _, it := range b.items {
			total += len(it.([]byte))
		}
		merged := make([]byte, 0, total)
		for _, it := range b.items {
			merged = append(merged, it.([]byte)...)
		}
		b.items = []any{merged}
	}
}

// sizeOf computes the per-item size metric for mode: byte length for
// Bytes, rune count for Text, 1 for every Object item.
func sizeOf(mode Mode, item any) int {
	switch mode {
	case ModeBytes:
		return len(item.([]byte))
	case ModeText:
		return utf8.RuneCountInString(item.(string))
	default:
		return 1
	}
}
