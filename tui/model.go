package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"virgo-core/chart"
	"virgo-core/gameplay"
	"virgo-core/input"
	"virgo-core/timing"
)

// The UI redraw loop polls the logical clock at its own rate; the metronome
// driver never waits on a frame.
const frameRate = 30

type Model struct {
	Coordinator *gameplay.Coordinator
	Metronome   *timing.Metronome
	Matcher     *input.Matcher
	BPM         float64
	TimeSig     chart.TimeSignature

	lastJudgment *input.Judgment
	quitting     bool
}

type FrameMsg time.Time

type UpdateMsg struct{}

func NewModel(c *gameplay.Coordinator, m *timing.Metronome, matcher *input.Matcher, bpm float64, ts chart.TimeSignature) Model {
	return Model{
		Coordinator: c,
		Metronome:   m,
		Matcher:     matcher,
		BPM:         bpm,
		TimeSig:     ts.Normalized(),
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func ListenForUpdates(c *gameplay.Coordinator) tea.Cmd {
	return func() tea.Msg {
		<-c.Updates()
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameTick(), ListenForUpdates(m.Coordinator))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Metronome.Stop()
			return m, tea.Quit

		case " ":
			if m.Metronome.IsPlaying() {
				m.Metronome.Stop()
				m.Coordinator.PausePlayback()
			} else {
				m.Coordinator.StartPlayback()
				m.Metronome.Start()
			}

		case "r":
			m.Metronome.Stop()
			m.Coordinator.RestartPlayback()

		case "s":
			m.Metronome.Stop()
			m.Coordinator.SkipToEnd()

		default:
			if j, ok := m.Matcher.HandleKey(msg.String(), m.elapsedSeconds()); ok {
				m.lastJudgment = &j
			}
		}

	case FrameMsg:
		if p, ok := m.Metronome.BeatProgress(m.TimeSig); ok {
			m.Coordinator.ObserveProgress(p)
		}
		return m, frameTick()

	case UpdateMsg:
		return m, ListenForUpdates(m.Coordinator)
	}

	return m, nil
}

// elapsedSeconds converts the raw beat position into seconds since playback
// start, the time base the matcher judges against.
func (m Model) elapsedSeconds() float64 {
	snap := m.Coordinator.Snapshot()
	return snap.RawBeatPosition * 60 / m.BPM
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Coordinator.Snapshot()
	state := m.Coordinator.State()

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	beatStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	header := headerStyle.Render(fmt.Sprintf(
		"virgo-core  %-8s  %3.0fbpm  %d/%d  measure:%02d",
		strings.ToUpper(state.String()), m.BPM,
		m.TimeSig.BeatsPerMeasure, m.TimeSig.NoteValue,
		snap.CurrentMeasureIndex+1,
	))

	// Beat lamps: one cell per beat of the measure, the live one lit.
	var lamps strings.Builder
	current := m.Metronome.CurrentBeat()
	playing := m.Metronome.IsPlaying()
	for i := 0; i < m.TimeSig.BeatsPerMeasure; i++ {
		cell := "○"
		if playing && i == current {
			cell = "●"
		}
		if i == 0 {
			lamps.WriteString(accentStyle.Render(cell))
		} else {
			lamps.WriteString(beatStyle.Render(cell))
		}
		lamps.WriteString(" ")
	}

	// Progress bar.
	const barWidth = 40
	filled := int(snap.Progress * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("─", barWidth-filled)

	judgment := ""
	if m.lastJudgment != nil {
		judgment = fmt.Sprintf("last hit: %s %s (%+.0fms)",
			m.lastJudgment.Drum, m.lastJudgment.Kind, m.lastJudgment.DeltaSeconds*1000)
	}

	help := dimStyle.Render("space:play/pause  r:restart  s:skip  fjdk...:drums  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(lamps.String())
	out.WriteString(fmt.Sprintf("   beats:%d", snap.TotalBeatsElapsed))
	out.WriteString("\n\n")
	out.WriteString(fmt.Sprintf("[%s] %3.0f%%", bar, snap.Progress*100))
	out.WriteString("\n\n")
	if judgment != "" {
		out.WriteString(judgment)
		out.WriteString("\n\n")
	}
	out.WriteString(help)
	return out.String()
}
