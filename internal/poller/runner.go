// internal/poller/runner.go
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/tamzrod/fault-manager/internal/event"
)

// Run starts the ticker loop and delivers pending faults to sink.
// One goroutine per source. No overlap. No retries within a tick.
func (p *Poller) Run(ctx context.Context, sink event.Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "poller"), slog.String("source", p.cfg.SourceID))

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	defer p.Close()

	var failing bool

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		res := p.PollOnce()

		if res.Err != nil {
			// Log the transition only; a dead device would flood otherwise.
			if !failing {
				logger.Warn("poll failed", slog.Any("err", res.Err))
			}
			failing = true
			continue
		}
		if failing {
			logger.Info("poll recovered")
			failing = false
		}

		if !res.Pending {
			continue
		}

		if err := sink.Deliver(ctx, res.Event); err != nil {
			logger.Error("fault event not delivered",
				slog.Int("code", int(res.Event.Code)),
				slog.Int("value", int(res.Event.Value)),
				slog.Any("err", err),
			)
		}
	}
}
