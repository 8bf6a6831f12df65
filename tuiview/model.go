// Package tuiview is a small Bubble Tea program that visualizes a
// Stream's lifecycle and backpressure state live: consumption mode,
// buffered size, the most recent chunk, and how the stream ended.
package tuiview

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gostreams/ministream"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

var _ tea.Model = Model{}

// eventKind identifies which Stream event a streamEventMsg carries.
type eventKind int

const (
	eventData eventKind = iota
	eventDrain
	eventEnd
	eventError
)

type streamEventMsg struct {
	kind    eventKind
	payload any
}

// doneMsg signals that the event channel has closed: the stream tore
// down and no further events will arrive.
type doneMsg struct{}

// Model renders the live state of one Stream.
type Model struct {
	Viewport viewport.Model

	stream *ministream.Stream
	styles Styles

	bufferLen     int
	lastChunk     string
	lastGraphemes int
	ended         bool
	err           error

	eventCh chan streamEventMsg
	subIDs  []subscription
	ready   bool
}

type subscription struct {
	event string
	id    int
}

// Styles holds the lipgloss styles used to render the status view.
type Styles struct {
	Accent lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
}

// DefaultStyles returns a reasonable default set of Styles, with no
// dependence on any particular Theme.
func DefaultStyles() Styles {
	return Styles{
		Accent: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// New subscribes to s's data, drain, end, and error events and returns a
// Model ready to hand to Run.
func New(s *ministream.Stream) Model {
	m := Model{
		stream:  s,
		styles:  DefaultStyles(),
		eventCh: make(chan streamEventMsg, 64),
	}

	sub := func(ev string, fn ministream.Listener) {
		id := s.On(ev, fn)
		m.subIDs = append(m.subIDs, subscription{event: ev, id: id})
	}
	send := func(msg streamEventMsg) {
		select {
		case m.eventCh <- msg:
		default:
		}
	}
	sub(ministream.EventData, func(args ...any) {
		if len(args) > 0 {
			send(streamEventMsg{kind: eventData, payload: args[0]})
		}
	})
	sub(ministream.EventDrain, func(args ...any) {
		send(streamEventMsg{kind: eventDrain})
	})
	sub(ministream.EventEnd, func(args ...any) {
		send(streamEventMsg{kind: eventEnd})
	})
	sub(ministream.EventError, func(args ...any) {
		if len(args) > 0 {
			send(streamEventMsg{kind: eventError, payload: args[0]})
		}
	})

	return m
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// done, whichever comes first.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return listenForEvent(m.eventCh)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Viewport = viewport.New(msg.Width, msg.Height-1)
		m.ready = true
		m.Viewport.SetContent(m.render(msg.Width))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case streamEventMsg:
		m = m.apply(msg)
		if m.ready {
			m.Viewport.SetContent(m.render(m.Viewport.Width))
		}
		return m, listenForEvent(m.eventCh)

	case doneMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) apply(msg streamEventMsg) Model {
	m.bufferLen = m.stream.BufferLength()
	switch msg.kind {
	case eventData:
		m.lastChunk = chunkPreview(msg.payload)
		m.lastGraphemes = uniseg.GraphemeClusterCount(m.lastChunk)
	case eventEnd:
		m.ended = true
	case eventError:
		if err, ok := msg.payload.(error); ok {
			m.err = err
		}
	}
	return m
}

func (m Model) View() string {
	if !m.ready {
		return "initializing…"
	}
	return m.Viewport.View()
}

func (m Model) render(width int) string {
	mode := m.styles.Muted.Render(fmt.Sprintf("mode=%s", m.stream.Mode()))
	state := m.styles.Accent.Render(consumptionState(m.stream))
	buf := fmt.Sprintf("buffer=%d chunk_graphemes=%d", m.bufferLen, m.lastGraphemes)

	status := fmt.Sprintf("%s  %s  %s", mode, state, buf)
	if m.ended {
		status += "  " + m.styles.Accent.Render("ended")
	}
	if m.err != nil {
		status += "  " + m.styles.Error.Render("error: "+m.err.Error())
	}

	preview := truncateToWidth(m.lastChunk, width)
	return status + "\n" + preview
}

func consumptionState(s *ministream.Stream) string {
	switch {
	case s.Destroyed():
		return "destroyed"
	case s.Flowing() && s.Discarded():
		return "flowing-discarded"
	case s.Flowing():
		return "flowing"
	case s.Paused():
		return "paused"
	default:
		return "undetermined"
	}
}

func chunkPreview(payload any) string {
	switch v := payload.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncateToWidth trims s to fit within width terminal columns, counting
// grapheme display width rather than bytes or runes, so wide/combining
// characters don't overrun the viewport.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func listenForEvent(ch <-chan streamEventMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return msg
	}
}
