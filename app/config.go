package app

import (
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"strings"
	"time"

	"wiohid/kernel"
)

// CPUFrequency is the core clock the firmware constants are expressed in.
const CPUFrequency = 120_000_000

// Config carries the tunables of the system table.
type Config struct {
	// CPUHz converts wall-time settings to cycles.
	CPUHz uint32 `mapstructure:"cpu_hz"`
	// SettleWindow is the quiet time a button line needs before it settles.
	SettleWindow time.Duration `mapstructure:"settle_window"`

	DispatchCapacity int `mapstructure:"dispatch_capacity"`
	PrintCapacity    int `mapstructure:"print_capacity"`

	// Banner writes the greeting to the panel at boot.
	Banner   bool   `mapstructure:"banner"`
	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns the firmware defaults.
func DefaultConfig() Config {
	return Config{
		CPUHz:            CPUFrequency,
		SettleWindow:     25 * time.Millisecond,
		DispatchCapacity: 8,
		PrintCapacity:    4,
		Banner:           true,
		LogLevel:         "info",
	}
}

// Cycles converts d to cycles of the configured clock. Results beyond the
// 32-bit counter saturate; validate rejects such settings.
func (c Config) Cycles(d time.Duration) kernel.Cycles {
	n, ok := c.cycles64(d)
	if !ok || n > math.MaxUint32 {
		return math.MaxUint32
	}
	return kernel.Cycles(n)
}

// cycles64 computes d*CPUHz/1s with a 128-bit product. ok is false for
// negative durations and quotients that do not fit 64 bits.
func (c Config) cycles64(d time.Duration) (n uint64, ok bool) {
	if d < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(d), uint64(c.CPUHz))
	if hi >= uint64(time.Second) {
		return 0, false
	}
	n, _ = bits.Div64(hi, lo, uint64(time.Second))
	return n, true
}

func (c Config) validate() error {
	if c.CPUHz == 0 {
		return fmt.Errorf("app: cpu_hz must be positive")
	}
	if c.SettleWindow <= 0 {
		return fmt.Errorf("app: settle_window must be positive")
	}
	// The kernel compares instants less than half the counter apart.
	if n, ok := c.cycles64(c.SettleWindow); !ok || n >= 1<<31 {
		return fmt.Errorf("app: settle_window %s overflows the cycle counter", c.SettleWindow)
	}
	for name, n := range map[string]int{"dispatch_capacity": c.DispatchCapacity, "print_capacity": c.PrintCapacity} {
		if n < 1 || n > kernel.MaxCapacity {
			return fmt.Errorf("app: %s %d: %w", name, n, kernel.ErrCapacity)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("app: unknown log level %q", s)
}
