// Package progress drives the simulated loading bar shown while a product is
// analysed. It performs no work of its own; it only paces ticks.
package progress

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultSteps = 100
	DefaultDelay = 20 * time.Millisecond
)

type Config struct {
	Steps int
	Delay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Steps <= 0 {
		c.Steps = DefaultSteps
	}
	c.Delay = max(c.Delay, 0)
	return c
}

// Tick is one step of the bar.
type Tick struct {
	Percent int    `json:"percent"`
	Text    string `json:"text"`
}

func NewTick(percent int) Tick {
	return Tick{Percent: percent, Text: fmt.Sprintf("Loading... %d%%", percent)}
}

// Run emits cfg.Steps ticks, sleeping cfg.Delay before each (a zero delay
// does not pause), with percentages rising to exactly 100. It stops early
// when ctx is cancelled or emit fails.
func Run(ctx context.Context, cfg Config, emit func(Tick) error) error {
	cfg = cfg.withDefaults()

	var timer *time.Timer
	if cfg.Delay > 0 {
		timer = time.NewTimer(cfg.Delay)
		defer timer.Stop()
	}

	last := 0
	for i := 1; i <= cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if timer != nil {
			if i > 1 {
				timer.Reset(cfg.Delay)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}

		percent := i * 100 / cfg.Steps
		if percent == last {
			continue
		}
		last = percent
		if err := emit(NewTick(percent)); err != nil {
			return err
		}
	}
	return nil
}
