//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ScriptedPress presses a host button at a point in time and holds it.
type ScriptedPress struct {
	Button  int
	At      time.Duration
	Hold    time.Duration
	Bounces int
}

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Duration stops the run after this long; zero runs until ctx ends.
	Duration time.Duration
	Presses  []ScriptedPress
}

// RunHeadless runs the firmware on a host HAL without opening a window,
// replaying the scripted button presses.
func RunHeadless(ctx context.Context, h HAL, run func(context.Context) error, cfg HeadlessConfig) error {
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}
	if hh, ok := h.(*hostHAL); ok {
		defer hh.Close()
	}

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	events := scriptEvents(cfg.Presses)
	start := time.Now()
	for _, ev := range events {
		wait := time.Until(start.Add(ev.at))
		select {
		case err := <-done:
			return quiet(err)
		case <-time.After(wait):
			Press(h, ev.button, ev.down, ev.bounces)
		}
	}
	return quiet(<-done)
}

type scriptEvent struct {
	at      time.Duration
	button  int
	down    bool
	bounces int
}

func scriptEvents(presses []ScriptedPress) []scriptEvent {
	var out []scriptEvent
	for _, p := range presses {
		hold := p.Hold
		if hold <= 0 {
			hold = 100 * time.Millisecond
		}
		out = append(out,
			scriptEvent{at: p.At, button: p.Button, down: true, bounces: p.Bounces},
			scriptEvent{at: p.At + hold, button: p.Button, down: false, bounces: p.Bounces},
		)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at < out[j].at })
	return out
}

func quiet(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
