package main

import (
	"log"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := makeapp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "afs"
	app.Usage = "2D acoustic pressure-velocity field driven by audio energy"
	app.Description = "Simulates sound propagation around obstacles and renders height and curvature fields"

	app.Commands = []cli.Command{
		{
			Name:    "view",
			Aliases: []string{"v"},
			Usage:   "Open a window; WASD moves the listener body through the scene",
			Flags: append(sharedFlags(),
				cli.IntFlag{Name: "scale", Value: 4, Usage: "Window pixels per visible cell", EnvVar: "AFS_SCALE"},
				cli.IntFlag{Name: "ticks-per-frame", Value: 1, Usage: "Simulation ticks per rendered frame (+/- with --debug)", EnvVar: "AFS_TICKS_PER_FRAME"},
				cli.BoolFlag{Name: "debug", Usage: "Show FPS and simulation overlay", EnvVar: "AFS_DEBUG"},
				cli.BoolFlag{Name: "occlude-los", Usage: "Hide cells outside the listener's line of sight", EnvVar: "AFS_OCCLUDE_LOS"},
				cli.Float64Flag{Name: "fov-deg", Value: 90, Usage: "Field of view for --occlude-los in degrees", EnvVar: "AFS_FOV_DEG"},
				cli.BoolFlag{Name: "monitor", Usage: "Play the centre pressure through the audio device", EnvVar: "AFS_MONITOR"},
				cli.StringFlag{Name: "record-pgo", Value: "", Usage: "Walk randomly for --pgo-duration while writing a CPU profile to this path", EnvVar: "AFS_RECORD_PGO"},
				cli.DurationFlag{Name: "pgo-duration", Value: pgoRecordDuration, Usage: "Length of the scripted walk for --record-pgo", EnvVar: "AFS_PGO_DURATION"},
			),
			Action: viewAction,
		},
		{
			Name:    "term",
			Aliases: []string{"t"},
			Usage:   "Render the field in the terminal; space injects a pulse, r resets, q quits",
			Flags: append(sharedFlags(),
				cli.IntFlag{Name: "tps", Value: 30, Usage: "Ticks per second", EnvVar: "AFS_TPS"},
			),
			Action: termAction,
		},
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "Run headless for a fixed number of ticks",
			Flags: append(sharedFlags(),
				cli.IntFlag{Name: "ticks", Value: 1000, Usage: "Number of ticks to simulate", EnvVar: "AFS_TICKS"},
				cli.IntFlag{Name: "log-every", Value: 100, Usage: "Log statistics every N ticks (0 disables)", EnvVar: "AFS_LOG_EVERY"},
				cli.StringFlag{Name: "record", Value: "", Usage: "Destination file for the recorded frames", EnvVar: "AFS_RECORD"},
				cli.StringFlag{Name: "cpuprofile", Value: "", Usage: "Write a CPU profile to this path", EnvVar: "AFS_CPUPROFILE"},
			),
			Action: runAction,
		},
	}
	return app
}
