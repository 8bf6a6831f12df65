package ministream_test

import (
	"testing"

	"github.com/gostreams/ministream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_EndPropagatesByDefault(t *testing.T) {
	t.Parallel()
	src, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	ended := false
	dest := &fakeWritable{
		writeFn: func(chunk any) (bool, error) { return true, nil },
	}
	dest.endFn = func(args ...any) error { ended = true; return nil }

	src.Pipe(dest)
	_, _ = src.Write([]byte("x"))
	require.NoError(t, src.End())

	assert.True(t, ended)
}

func TestPipe_StdoutSinkNeverEnded(t *testing.T) {
	t.Parallel()
	src, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	ended := false
	dest := &fdWritable{
		fakeWritable: fakeWritable{writeFn: func(chunk any) (bool, error) { return true, nil }},
		fd:           1,
	}
	dest.endFn = func(args ...any) error { ended = true; return nil }

	src.Pipe(dest)
	require.NoError(t, src.End())

	assert.False(t, ended)
}

func TestPipe_ProxyErrors(t *testing.T) {
	t.Parallel()
	src, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	var received error
	dest := &fakeWritable{
		writeFn: func(chunk any) (bool, error) { return true, nil },
	}
	dest.emitErrorFn = func(err error) { received = err }

	src.Pipe(dest, ministream.WithProxyErrors(true))

	wantErr := assertableErr("pipe error")
	src.Emit(ministream.EventError, wantErr)

	assert.Equal(t, wantErr, received)
}

func TestUnpipe_StopsForwarding(t *testing.T) {
	t.Parallel()
	src, err := ministream.New(ministream.Options{})
	require.NoError(t, err)

	var written []any
	dest := &fakeWritable{
		writeFn: func(chunk any) (bool, error) {
			written = append(written, chunk)
			return true, nil
		},
	}

	src.Pipe(dest)
	_, _ = src.Write([]byte("a"))
	src.Unpipe(dest)
	_, _ = src.Write([]byte("b"))

	require.Len(t, written, 1)
	assert.Equal(t, []byte("a"), written[0])
}

type fdWritable struct {
	fakeWritable
	fd uintptr
}

func (f *fdWritable) Fd() uintptr { return f.fd }
