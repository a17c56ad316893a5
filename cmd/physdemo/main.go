// physdemo is a tiny headless harness that loads a world.yaml preset
// through config.Load, steps the resulting world for a fixed duration,
// and logs per-step summaries through telemetry — a thin consumer in
// the teacher's hellog3n style (hellog3n/main.go), living outside the
// core boundary spec.md §6 draws rather than adding any core operation.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ironvale/physics3d/config"
	"github.com/ironvale/physics3d/telemetry"
)

func main() {
	presetPath := flag.String("preset", "", "path to a world.yaml preset")
	seconds := flag.Float64("seconds", 5, "simulated duration in seconds")
	hz := flag.Float64("hz", 60, "simulation steps per second")
	verbose := flag.Bool("v", false, "log per-step summaries at Debug level")
	realtime := flag.Bool("realtime", false, "pace stepping to wall-clock time instead of running as fast as possible")
	flag.Parse()

	if *presetPath == "" {
		fmt.Fprintln(os.Stderr, "physdemo: -preset is required")
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		telemetry.Root.SetLevel(telemetry.Debug)
	}

	preset, err := config.Load(*presetPath)
	if err != nil {
		telemetry.Root.Errorf("loading preset: %v", err)
		os.Exit(1)
	}

	w, err := preset.Build()
	if err != nil {
		telemetry.Root.Errorf("building world: %v", err)
		os.Exit(1)
	}

	dt := float32(1 / *hz)
	steps := int(*seconds * *hz)
	w.Log().Infof("stepping %d times at dt=%.5f (%d bodies)", steps, dt, w.BodyCount())

	var pace *pacer
	if *realtime {
		pace = newPacer(*hz)
	}
	for i := 0; i < steps; i++ {
		if pace != nil {
			pace.Start()
		}
		w.Step(dt)
		if pace != nil {
			pace.Wait()
		}
	}
	w.Log().Infof("done: %d bodies remain live", w.BodyCount())
}
