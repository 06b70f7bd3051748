package service

import (
	"context"

	"github.com/rs/zerolog"
)

// compensator collects undo steps for effects already applied during a
// lifecycle operation. On failure the steps run in reverse order; a
// compensation that itself fails is logged and skipped, the original
// error still wins.
type compensator struct {
	steps []compensation
}

type compensation struct {
	name string
	undo func(context.Context) error
}

func (c *compensator) add(name string, undo func(context.Context) error) {
	c.steps = append(c.steps, compensation{name: name, undo: undo})
}

func (c *compensator) rollback(ctx context.Context, log zerolog.Logger) {
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.undo(ctx); err != nil {
			log.Warn().Err(err).Str("step", step.name).Msg("compensation failed")
		}
	}
}
