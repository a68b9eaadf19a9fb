package engine

import (
	"context"
	"time"
)

type loopHandle struct {
	cancel context.CancelFunc
}

// Run drives the engine at the given frame rate until ctx is cancelled or
// [Engine.Detach] is called. After every tick frame is invoked with the
// engine so the host can read positions and draw; frame may be nil.
// Ticks where the simulation is settled do no work, so an idle map costs
// only a timer wakeup.
//
// Run blocks. Starting a new layout through [Engine.SetSnapshot] or
// [Engine.SetTree] from the frame callback cancels the loop; the caller is
// expected to start a fresh one for the new state.
func (e *Engine) Run(ctx context.Context, fps int, frame func(*Engine)) {
	if e.detached {
		return
	}
	if fps <= 0 {
		fps = 60
	}
	step := time.Second / time.Duration(fps)

	ctx, cancel := context.WithCancel(ctx)
	e.stopLoop()
	e.loop = &loopHandle{cancel: cancel}
	defer cancel()

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	dt := step.Seconds() * 60 // unit time per 60fps frame
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Step(dt)
			if frame != nil {
				frame(e)
			}
		}
	}
}

// stopLoop cancels the active run loop, if any. Called from state-replacing
// operations so a stale loop never ticks a new layout.
func (e *Engine) stopLoop() {
	if e.loop == nil {
		return
	}
	e.loop.cancel()
	e.loop = nil
}
