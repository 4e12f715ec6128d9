// Package tui renders live debate progress in the terminal.
//
// The model consumes orchestration events from the event bus and shows a
// spinner for the in-flight stage, one line per completed stage, and a
// closing summary. It is only started on interactive terminals; plain runs
// fall back to log output.
package tui

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/strategyclub/debate/internal/event"
	"github.com/strategyclub/debate/internal/tui/styles"
)

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Subscribe routes all bus events into a channel the Model can consume.
// The returned cancel func detaches from the bus and closes the channel.
// It is safe to call more than once, and a publish still in flight when
// cancel runs is discarded rather than sent on the closed channel.
func Subscribe(bus *event.Bus) (<-chan event.Event, func()) {
	ch := make(chan event.Event, 256)

	var mu sync.Mutex
	closed := false

	id := bus.SubscribeAll(func(ev event.Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
			// A stalled UI must never block the orchestrator.
		}
	})
	return ch, func() {
		bus.Unsubscribe(id)
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
}

type eventMsg struct{ ev event.Event }

type eventsClosedMsg struct{}

// Model is the bubbletea model for a running debate.
type Model struct {
	spinner spinner.Model
	events  <-chan event.Event

	totalRounds int
	round       int
	stage       string
	provider    string
	retrying    string

	lines []string
	done  bool
	fail  string
}

// NewModel creates a progress model reading from the given event channel.
func NewModel(events <-chan event.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Primary
	return Model{spinner: sp, events: events}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(ch <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit

	case eventMsg:
		m = m.apply(msg.ev)
		if m.done {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	}

	return m, nil
}

// apply folds one orchestration event into the view state.
func (m Model) apply(ev event.Event) Model {
	switch ev := ev.(type) {
	case event.RunStartedEvent:
		m.totalRounds = ev.TotalRounds
		if ev.Resumed {
			m.lines = append(m.lines, styles.Muted.Render(fmt.Sprintf("resumed at round %d", ev.StartRound)))
		}

	case event.RoundStartedEvent:
		m.round = ev.Round
		m.lines = append(m.lines, styles.RoundBanner.Render(fmt.Sprintf("Round %d/%d", ev.Round, ev.Total)))

	case event.StageStartedEvent:
		m.stage = ev.Stage
		m.provider = ev.Provider
		m.retrying = ""

	case event.StageRetryingEvent:
		m.retrying = fmt.Sprintf("retry %d: %s", ev.Attempt, ev.Reason)

	case event.StageCompletedEvent:
		m.retrying = ""
		m.lines = append(m.lines, fmt.Sprintf("  %s %s",
			styles.ForStage(ev.Stage).Render(ev.Provider),
			styles.Green.Render("done")))

	case event.SynthesisStartedEvent:
		m.stage = "final"
		m.provider = "claude"
		m.lines = append(m.lines, styles.RoundBanner.Render("Final synthesis"))

	case event.SynthesisCompletedEvent:
		m.lines = append(m.lines, fmt.Sprintf("  %s %s",
			styles.Final.Render("dissent register"),
			styles.Green.Render(fmt.Sprintf("%d entries", ev.DissentCount))))

	case event.RunCompletedEvent:
		m.lines = append(m.lines, styles.Green.Render(fmt.Sprintf("completed, final document: %s", ev.FinalPath)))
		m.done = true

	case event.RunFailedEvent:
		m.fail = ev.Reason
		m.done = true
	}
	return m
}

func (m Model) View() string {
	var out string
	for _, line := range m.lines {
		out += line + "\n"
	}

	if m.fail != "" {
		out += styles.Error.Render("run failed: "+m.fail) + "\n"
		return out
	}
	if m.done {
		return out
	}

	if m.stage != "" {
		working := fmt.Sprintf("%s %s working...",
			m.spinner.View(),
			styles.ForStage(m.stage).Render(m.provider))
		if m.retrying != "" {
			working += " " + styles.Warning.Render(m.retrying)
		}
		out += working + "\n"
	} else {
		out += m.spinner.View() + " starting...\n"
	}
	return out
}

// Run starts the progress UI and blocks until the run finishes or the user
// quits.
func Run(events <-chan event.Event) error {
	_, err := tea.NewProgram(NewModel(events)).Run()
	return err
}
