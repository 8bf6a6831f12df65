package ministream_test

import (
	"context"
	"testing"
	"time"

	"github.com/gostreams/ministream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Iter(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)
	s.Pause()

	_, _ = s.Write([]byte("a"))
	_, _ = s.Write([]byte("b"))
	_, _ = s.Write([]byte("c"))

	// Read coalesces every buffered item before splitting, so a single
	// sync-iteration step drains all three as one concatenated chunk.
	var got [][]byte
	for item := range s.Iter() {
		got = append(got, item.([]byte))
	}

	require.Len(t, got, 1)
	assert.Equal(t, []byte("abc"), got[0])
}

func TestStream_Iter_StopEarlyPauses(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)
	s.Pause()

	_, _ = s.Write([]byte("a"))
	_, _ = s.Write([]byte("b"))

	for range s.Iter() {
		break
	}

	assert.True(t, s.Paused())
}

func TestStream_Next_BlocksUntilWrite(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	type result struct {
		item any
		ok   bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		item, ok, err := s.Next(context.Background())
		done <- result{item, ok, err}
	}()

	time.Sleep(10 * time.Millisecond)
	_, err = s.Write([]byte("hello"))
	require.NoError(t, err)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.True(t, r.ok)
		assert.Equal(t, []byte("hello"), r.item)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Next")
	}
}

func TestStream_Next_ContextCancelled(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := s.Next(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_Collect(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	_, _ = s.Write([]byte("ab"))
	_, _ = s.Write([]byte("cde"))
	require.NoError(t, s.End())

	items, dataLength, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 5, dataLength)
}

func TestStream_Promise_RejectsOnError(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	wantErr := assertableErr("stream failed")
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Emit(ministream.EventError, wantErr)
	}()

	err = s.Promise(context.Background())
	assert.Equal(t, wantErr, err)
}

func TestStream_Next_DeliversDecoderFlushOnEnd(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{Encoding: ministream.EncodingUTF8})
	require.NoError(t, err)

	type result struct {
		items []any
		err   error
	}
	done := make(chan result, 1)
	go func() {
		items, _, err := s.Collect(context.Background())
		done <- result{items, err}
	}()

	// Each sleep gives Collect's next Next call time to register as a
	// waiter before the following write, so the decoder's End flush below
	// lands on a pending waiter rather than an empty iterWaiters list.
	time.Sleep(10 * time.Millisecond)
	_, werr := s.Write([]byte("a"))
	require.NoError(t, werr)

	time.Sleep(10 * time.Millisecond)
	_, werr = s.Write([]byte{0xE2, 0x98}) // truncated snowman, absorbed pending
	require.NoError(t, werr)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.End())

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.Len(t, r.items, 2)
		assert.Equal(t, "a", r.items[0])
		assert.Equal(t, "�", r.items[1])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Collect")
	}
}

func TestStream_Concat_ObjectModeRejected(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{ObjectMode: true})
	require.NoError(t, err)

	_, err = s.Concat(context.Background())
	assert.ErrorIs(t, err, ministream.ErrConcatObjectMode)
}
