//go:build !tinygo

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"wiohid/app"
	"wiohid/hal"
)

type runOptions struct {
	configFile string
	headless   bool
	duration   time.Duration
	presses    []string
	bounces    int
	logPins    bool

	// Bound for their Changed state; loadConfig reads the values.
	settle   time.Duration
	logLevel string
	noBanner bool
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configFile, "config", "c", "", "Config file (default "+configPath()+").")
	f.BoolVar(&o.headless, "headless", false, "Run without a window.")
	f.DurationVar(&o.duration, "duration", 0, "Stop after this long (0 = until interrupted).")
	f.StringArrayVar(&o.presses, "press", nil, "Scripted press in headless mode: Button@at[+hold], e.g. TopLeft@200ms+50ms.")
	f.IntVar(&o.bounces, "bounces", 0, "Contact bounces added to every scripted edge.")
	f.BoolVar(&o.logPins, "log-pins", false, "Log LED and backlight transitions.")
	f.DurationVar(&o.settle, "settle", 0, "Button settle window.")
	f.StringVar(&o.logLevel, "log-level", "", "One of debug, info, warn, error.")
	f.BoolVar(&o.noBanner, "no-banner", false, "Skip the boot banner.")
}

func (o *runOptions) run(cmd *cobra.Command) error {
	cfg, err := loadConfig(o.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	var presses []hal.ScriptedPress
	for _, s := range o.presses {
		p, err := parsePress(s, o.bounces)
		if err != nil {
			return err
		}
		presses = append(presses, p)
	}

	h := hal.NewHost(hal.HostConfig{CPUHz: cfg.CPUHz, LogPins: o.logPins})
	a, err := app.New(h, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if o.headless {
		err = hal.RunHeadless(ctx, h, a.Run, hal.HeadlessConfig{Duration: o.duration, Presses: presses})
	} else {
		if o.duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.duration)
			defer cancel()
		}
		err = hal.RunWindow(ctx, h, a.Run)
	}
	printSummary(a, h)
	return err
}

// parsePress reads Button@at or Button@at+hold.
func parsePress(s string, bounces int) (hal.ScriptedPress, error) {
	name, when, ok := strings.Cut(s, "@")
	if !ok {
		return hal.ScriptedPress{}, fmt.Errorf("press %q: want Button@at[+hold]", s)
	}
	b, ok := hal.ButtonIndex(name)
	if !ok {
		return hal.ScriptedPress{}, fmt.Errorf("press %q: unknown button %q", s, name)
	}
	at, hold, _ := strings.Cut(when, "+")
	p := hal.ScriptedPress{Button: b, Bounces: bounces}
	var err error
	if p.At, err = time.ParseDuration(at); err != nil {
		return hal.ScriptedPress{}, fmt.Errorf("press %q: %w", s, err)
	}
	if hold != "" {
		if p.Hold, err = time.ParseDuration(hold); err != nil {
			return hal.ScriptedPress{}, fmt.Errorf("press %q: %w", s, err)
		}
	}
	return p, nil
}

func printSummary(a *app.App, h hal.HAL) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(color.New(color.Bold).Sprint("TASK"), "PRIO", "RUNS", "DROPPED")
	for _, st := range a.Kernel().Stats() {
		dropped := fmt.Sprint(st.Dropped)
		if st.Dropped > 0 {
			dropped = color.RedString(dropped)
		}
		tbl.AddRow(st.Name, st.Priority, st.Activations, dropped)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)

	if hs, ok := hal.Stats(h); ok {
		last := "-"
		if len(hs.LastReport) > 0 {
			last = fmt.Sprintf("% x", hs.LastReport)
		}
		_, _ = fmt.Fprintf(color.Output, "reports: %d  last: %s  led toggles: %d  backlight toggles: %d\n",
			hs.Reports, last, hs.LEDToggles, hs.BacklightToggles)
	}
}
