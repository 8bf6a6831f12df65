package ministream_test

import (
	"context"
	"testing"
	"time"

	"github.com/gostreams/ministream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOn_Data_AutoResumes(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)
	s.Pause()

	var got any
	s.On(ministream.EventData, func(args ...any) { got = args[0] })

	_, err = s.Write([]byte("x"))
	require.NoError(t, err)

	assert.Equal(t, []byte("x"), got)
	assert.True(t, s.Flowing())
}

func TestOff_Data_LastListenerRepauses(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	id := s.On(ministream.EventData, func(args ...any) {})
	assert.True(t, s.Flowing())

	s.Off(ministream.EventData, id)
	assert.False(t, s.Flowing())
}

func TestRemoveAllListeners_DoesNotStrandPendingIteration(t *testing.T) {
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

	// The documented asymmetry: this clears every public subscriber, but
	// must not strand the Next call above, since Next's subscription is
	// internal to the Stream rather than routed through the public
	// registry.
	s.RemoveAllListeners()

	_, err = s.Write([]byte("still works"))
	require.NoError(t, err)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.True(t, r.ok)
		assert.Equal(t, []byte("still works"), r.item)
	case <-time.After(time.Second):
		t.Fatal("timed out: RemoveAllListeners stranded the pending iteration")
	}
}

func TestRemoveAllDataListeners(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	s.On(ministream.EventData, func(args ...any) {})
	assert.True(t, s.Flowing())

	s.RemoveAllDataListeners()
	assert.False(t, s.Flowing())
}
