// Package sweep demonstrates the only concurrency pattern this engine
// supports safely: independent engine instances run in parallel by an
// external driver, never a single book mutated from more than one
// goroutine. It is a parameter-sweep harness — one book.OrderBook, and
// everything built on it, per goroutine — useful for backtesting many
// independent command sequences (e.g. strategy variants) at once.
//
// Runs are named and their results collected in order, dispatched through
// a panjf2000/ants/v2 worker pool instead of one raw goroutine per run, so
// a large sweep's concurrent goroutine count stays bounded.
package sweep

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchcore/internal/engine"
	"github.com/abdoElHodaky/matchcore/internal/eventlog"
	"github.com/abdoElHodaky/matchcore/internal/metrics"
)

// Run is one named command sequence to replay through its own engine.
type Run struct {
	Name    string
	Records []eventlog.Record
}

// Result is the outcome of replaying one Run to completion.
type Result struct {
	Name       string
	TradeCount int
	FinalL1    string // formatted best-bid/ask, kept as a string to avoid exposing book.L1 beyond this package's return boundary
	Err        error
}

// Sweep runs every Run through its own fresh engine.Engine, concurrently,
// bounded by poolSize simultaneous workers. Each run is fully isolated —
// no state is shared between engines — so this never violates the
// single-book/no-concurrent-mutation rule any individual engine is built
// under.
func Sweep(runs []Run, poolSize int, logger *zap.Logger) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]Result, len(runs))
	var wg sync.WaitGroup

	for i, run := range runs {
		i, run := i, run
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = replayOne(run, logger)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = Result{Name: run.Name, Err: submitErr}
		}
	}

	wg.Wait()
	return results, nil
}

func replayOne(run Run, logger *zap.Logger) Result {
	e := engine.Replay(run.Records, logger, (*metrics.Recorder)(nil))
	l1 := e.BestBidAsk()

	final := "no bid or ask"
	switch {
	case l1.HasBid && l1.HasAsk:
		final = fmt.Sprintf("bid=%d ask=%d spread=%d", l1.BestBid, l1.BestAsk, l1.Spread)
	case l1.HasBid:
		final = fmt.Sprintf("bid=%d ask=none", l1.BestBid)
	case l1.HasAsk:
		final = fmt.Sprintf("bid=none ask=%d", l1.BestAsk)
	}

	return Result{
		Name:       run.Name,
		TradeCount: len(e.Trades()),
		FinalL1:    final,
	}
}
