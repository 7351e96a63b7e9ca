package engine

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchcore/internal/metrics"
)

// Module provides a single *Engine to an fx application, logging its
// start and stop through the fx lifecycle hook.
var Module = fx.Options(
	fx.Provide(NewFx),
)

// NewFx builds the Engine from fx-supplied dependencies and registers
// lifecycle logging hooks.
func NewFx(lc fx.Lifecycle, logger *zap.Logger, rec *metrics.Recorder) *Engine {
	e := New(logger, rec)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("engine started")
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Info("engine stopped", zap.Int("events_logged", e.log.Len()))
			return nil
		},
	})

	return e
}
