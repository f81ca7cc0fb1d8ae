package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"virgo-core/audio"
	"virgo-core/chart"
	"virgo-core/config"
	"virgo-core/gameplay"
	"virgo-core/input"
	"virgo-core/timing"
	"virgo-core/tui"
)

// demoChart builds two measures of quarter notes with a simple rock pattern.
func demoChart() []chart.Note {
	var notes []chart.Note
	for m := 1; m <= 2; m++ {
		for b := 0; b < 4; b++ {
			offset := float64(b) / 4
			drum := chart.BassDrum
			if b%2 == 1 {
				drum = chart.Snare
			}
			notes = append(notes,
				chart.Note{Interval: chart.Quarter, Drum: drum, MeasureNumber: m, MeasureOffset: offset},
				chart.Note{Interval: chart.Quarter, Drum: chart.HiHatClosed, MeasureNumber: m, MeasureOffset: offset},
			)
		}
	}
	return notes
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("config unreadable, using defaults")
		cfg = config.DefaultConfig()
	}

	bpm := cfg.Playback.BPM
	if bpm <= 0 {
		bpm = 120
	}
	timeSig := chart.CommonTime

	metronome := timing.NewMetronome(log)
	metronome.Configure(bpm, timeSig)

	click := audio.NewClickPlayer(log)
	click.Resume()
	defer click.Stop()

	coordinator := gameplay.NewCoordinator(log)
	coordinator.LoadChartData(demoChart(), bpm, timeSig)
	coordinator.SetupGameplay()
	defer coordinator.Cleanup()

	coordinator.Attach(metronome)
	volume := cfg.Playback.ClickVolume
	coordinator.SetTickSound(func(accent bool, at time.Time) {
		ts, ok := click.ConvertToEngineTime(at)
		click.PlayTick(volume, accent, ts, ok)
	})

	matcher := input.NewMatcher(log)
	matcher.Configure(bpm, timeSig, demoChart())
	matcher.SetKeyboardMapping(cfg.KeyboardMap())
	matcher.SetMIDIMapping(cfg.MIDIMap())

	if cfg.Playback.AutoStart {
		coordinator.StartPlayback()
		metronome.Start()
	}

	m := tui.NewModel(coordinator, metronome, matcher, bpm, timeSig)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	metronome.Stop()
}
