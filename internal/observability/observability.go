// Package observability boots tracing, continuous profiling and the pprof
// listener, and tears them down in reverse order.
package observability

import (
	"context"
	"errors"

	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

type stopFunc func(context.Context) error

// Runtime holds whatever Start enabled. The zero value shuts down cleanly.
type Runtime struct {
	stops  []stopFunc
	logger *logging.Logger
}

func Start(cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{logger: logger.Named("observability")}

	for _, start := range []func(config.Config, *logging.Logger) (stopFunc, error){
		startTracing,
		startProfiling,
		startPprof,
	} {
		stop, err := start(cfg, rt.logger)
		if err != nil {
			_ = rt.Shutdown(context.Background())
			return nil, err
		}
		if stop != nil {
			rt.stops = append(rt.stops, stop)
		}
	}
	return rt, nil
}

// Shutdown flushes spans and stops profilers; every stop runs even when an
// earlier one fails.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.stops) - 1; i >= 0; i-- {
		if err := r.stops[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.stops = nil
	return errors.Join(errs...)
}
