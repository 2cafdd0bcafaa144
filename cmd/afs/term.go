package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"AFS/render"
	"AFS/wave"
)

const termHeightGain = 0.1

func termAction(c *cli.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialising terminal screen: %w", err)
	}
	defer screen.Fini()

	sink := render.NewTerminalSink(screen, render.DefaultPalette(), termHeightGain)
	w, err := buildWorld(c, wave.WithSink(sink))
	if err != nil {
		return err
	}
	defer w.sim.Close()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	tps := max(1, c.Int("tps"))
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
					return nil
				case ev.Rune() == 'r':
					if err := w.sim.Reset(); err != nil {
						sink.SetStatus(fmt.Sprintf("reset: %v", err))
					}
				case ev.Rune() == ' ':
					w.sim.ApplyCentralImpulse(w.cfg.AudioImpulseMultiplier)
				}
			}
		case <-ticker.C:
			sink.SetStatus(statsLine(w.sim))
			if err := w.sim.Tick(); err != nil {
				return err
			}
		}
	}
}
