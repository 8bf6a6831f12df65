package tuiview_test

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/gostreams/ministream"
	"github.com/gostreams/ministream/tuiview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Update_RendersBufferAndChunk(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{Encoding: ministream.EncodingUTF8})
	require.NoError(t, err)

	m := tuiview.New(s)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = model.(tuiview.Model)

	_, werr := s.Write("hello")
	require.NoError(t, werr)

	time.Sleep(20 * time.Millisecond)

	model, _ = m.Update(<-drain(m))
	m = model.(tuiview.Model)

	view := m.View()
	assert.Contains(t, view, "hello")
}

func TestModel_TeatestFlow(t *testing.T) {
	t.Parallel()
	s, err := ministream.New(ministream.Options{Encoding: ministream.EncodingUTF8})
	require.NoError(t, err)

	tm := teatest.NewTestModel(t, tuiview.New(s), teatest.WithInitialTermSize(80, 24))

	go func() {
		_, _ = s.Write("streaming")
		_ = s.End()
	}()

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("streaming")) || bytes.Contains(out, []byte("ended"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
}

// drain exposes the model's internal event channel indirectly by issuing
// Init and returning the resulting command's message, since the channel
// itself is private to the package.
func drain(m tuiview.Model) <-chan tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		cmd := m.Init()
		if cmd != nil {
			ch <- cmd()
		}
	}()
	return ch
}
