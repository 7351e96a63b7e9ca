package engine

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchcore/internal/eventlog"
	"github.com/abdoElHodaky/matchcore/internal/metrics"
)

// Events returns every command recorded against this engine so far, oldest
// first, suitable for persisting via eventlog.WriteTo/WriteCompressed.
func (e *Engine) Events() []eventlog.Record {
	return e.log.Records()
}

// Replay constructs a brand-new engine and applies records to it in order,
// through the exact same dispatch path (Engine.apply) that live submission
// uses. Given the same records, it always reproduces identical resulting
// state: counters, resting book, and trade sequence. The returned
// engine's event log is byte-for-byte the input, including original
// external correlation ids.
func Replay(records []eventlog.Record, logger *zap.Logger, rec *metrics.Recorder) *Engine {
	e := New(logger, rec)
	eventlog.Replay(records, func(r eventlog.Record) {
		e.apply(r)
		e.log.AppendRaw(r)
	})
	return e
}
