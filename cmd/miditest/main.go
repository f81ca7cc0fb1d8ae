package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"virgo-core/config"
	"virgo-core/input"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "listen":
		idx := 0
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil {
				idx = n
			}
		}
		listen(idx)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI input probe")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List all MIDI ports")
	fmt.Println("  listen [idx]  - Print drum-mapped hits from input port idx")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func listen(idx int) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	drums := cfg.MIDIMap()

	l, err := input.NewListener(idx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer l.Close()

	fmt.Printf("Listening on %s (ctrl+c to quit)\n", l.ID())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	for {
		select {
		case <-sig:
			return
		case hit := <-l.Hits():
			if drum, ok := drums[hit.Note]; ok {
				fmt.Printf("  note %3d vel %3d -> %s\n", hit.Note, hit.Velocity, drum)
			} else {
				fmt.Printf("  note %3d vel %3d (unmapped)\n", hit.Note, hit.Velocity)
			}
		}
	}
}
