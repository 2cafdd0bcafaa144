package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli"

	"AFS/render"
	"AFS/wave"
)

func runAction(c *cli.Context) error {
	if path := c.String("cpuprofile"); path != "" {
		stop, err := startCPUProfile(path)
		if err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer stop()
	}

	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}

	var opts []wave.Option
	var rec *render.Recorder
	if path := c.String("record"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating recording: %w", err)
		}
		defer f.Close()
		rec, err = render.NewRecorder(f, cfg.GridWidth, cfg.GridHeight)
		if err != nil {
			return err
		}
		defer rec.Flush()
		opts = append(opts, wave.WithSink(rec))
	}

	w, err := buildWorld(c, opts...)
	if err != nil {
		return err
	}
	defer w.sim.Close()

	ticks := c.Int("ticks")
	logEvery := c.Int("log-every")
	start := time.Now()
	for i := 1; i <= ticks; i++ {
		if err := w.sim.Tick(); err != nil {
			return err
		}
		if logEvery > 0 && i%logEvery == 0 {
			log.Print(statsLine(w.sim))
		}
	}
	elapsed := time.Since(start)
	log.Printf("Simulated %d ticks in %s (%.1f ticks/s)", ticks, elapsed, float64(ticks)/elapsed.Seconds())

	if rec != nil {
		if err := rec.Flush(); err != nil {
			return fmt.Errorf("flushing recording: %w", err)
		}
		log.Printf("Recorded %d frames to %s", rec.Frames(), c.String("record"))
	}
	return nil
}
