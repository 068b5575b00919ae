package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytsync/internal/sync"
)

const maxLogLines = 12

// Model is the progress view for a running sync cycle.
type Model struct {
	updates <-chan sync.ProgressUpdate
	outcome <-chan Outcome

	spin    spinner.Model
	current sync.ProgressUpdate
	log     []string
	done    bool
	result  Outcome
}

// NewModel creates a progress view reading engine updates and the final
// outcome from the given channels.
func NewModel(updates <-chan sync.ProgressUpdate, outcome <-chan Outcome) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title
	return Model{
		updates: updates,
		outcome: outcome,
		spin:    s,
	}
}

// Init starts the spinner and the channel readers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForUpdate(m.updates), waitForOutcome(m.outcome))
}

// waitForUpdate reads one progress update from the engine channel.
func waitForUpdate(updates <-chan sync.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return updatesDrainedMsg()
		}
		return progressUpdateMsg(update)
	}
}

// waitForOutcome blocks until the cycle finishes.
func waitForOutcome(outcome <-chan Outcome) tea.Cmd {
	return func() tea.Msg {
		return runCompleteMsg(<-outcome)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(sync.ProgressUpdate)
			m.current = update
			m.log = append(m.log, fmt.Sprintf("[%s] %s", update.Phase, update.Message))
			if len(m.log) > maxLogLines {
				m.log = m.log[len(m.log)-maxLogLines:]
			}
			return m, waitForUpdate(m.updates)
		case MsgUpdatesDrained:
			return m, nil
		case MsgRunComplete:
			m.done = true
			m.result = msg.data.(Outcome)
			return m, tea.Quit
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("ytsync"))
	b.WriteString("\n")

	if m.done {
		if m.result.Err != nil {
			b.WriteString(styles.err.Render(fmt.Sprintf("run failed: %v", m.result.Err)))
		} else if m.result.Report != nil {
			b.WriteString(styles.ok.Render(fmt.Sprintf(
				"done: %d feeds, %d new items, %d failures",
				m.result.Report.FeedsProcessed,
				m.result.Report.TotalInserted(),
				len(m.result.Report.Failures),
			)))
			if m.result.Backfill != nil && m.result.Backfill.Enabled {
				b.WriteString(styles.ok.Render(fmt.Sprintf(", %d enriched", m.result.Backfill.ItemsEnriched)))
			}
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s %s\n\n", m.spin.View(), m.current.Message))
	for _, line := range m.log {
		b.WriteString(styles.warn.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(styles.help.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}
