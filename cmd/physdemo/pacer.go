package main

import "time"

// pacer paces a headless step loop to wall-clock time, adapted from the
// teacher's util.FrameRater (util/framerater.go) — same
// Start/Wait/targetDuration shape, trimmed to what a non-rendering loop
// needs: no FPS sampling, since physdemo has no frame to measure beyond
// the steps telemetry already logs.
type pacer struct {
	targetDuration time.Duration
	frameStart     time.Time
	timer          *time.Timer
}

// newPacer returns a pacer that sleeps out the remainder of each
// 1/hz-second slice Wait is called at the end of.
func newPacer(hz float64) *pacer {
	p := &pacer{targetDuration: time.Duration(float64(time.Second) / hz)}
	p.timer = time.NewTimer(0)
	<-p.timer.C
	return p
}

func (p *pacer) Start() {
	p.frameStart = time.Now()
}

func (p *pacer) Wait() {
	elapsed := time.Since(p.frameStart)
	diff := p.targetDuration - elapsed
	if diff > 0 {
		p.timer.Reset(diff)
		<-p.timer.C
	}
}
