package job

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotRefresher is the cache-warming side of the snapshot service.
type SnapshotRefresher interface {
	RefreshMarkets(ctx context.Context, currency string, limit int) error
	RefreshRates(ctx context.Context, base string) error
}

// PollerConfig selects what the poller keeps warm and how often.
type PollerConfig struct {
	Currency          string
	Base              string
	SummaryLimit      int
	DashboardLimit    int
	PollSecs          int
	DashboardPollSecs int
}

// SnapshotPoller runs background goroutines that periodically refresh market
// listings and exchange rates.
type SnapshotPoller struct {
	tracer            trace.Tracer
	snapshots         SnapshotRefresher
	currency          string
	base              string
	summaryLimit      int
	dashboardLimit    int
	pollInterval      time.Duration
	dashboardInterval time.Duration
}

func NewSnapshotPoller(tracer trace.Tracer, snapshots SnapshotRefresher, cfg PollerConfig) *SnapshotPoller {
	if cfg.PollSecs <= 0 {
		cfg.PollSecs = 30
	}
	if cfg.DashboardPollSecs <= 0 {
		cfg.DashboardPollSecs = 60
	}
	return &SnapshotPoller{
		tracer:            tracer,
		snapshots:         snapshots,
		currency:          cfg.Currency,
		base:              cfg.Base,
		summaryLimit:      cfg.SummaryLimit,
		dashboardLimit:    cfg.DashboardLimit,
		pollInterval:      time.Duration(cfg.PollSecs) * time.Second,
		dashboardInterval: time.Duration(cfg.DashboardPollSecs) * time.Second,
	}
}

// Start launches the polling goroutines. Blocks until ctx is cancelled.
func (p *SnapshotPoller) Start(ctx context.Context) {
	log.Info().
		Dur("interval", p.pollInterval).
		Dur("dashboard_interval", p.dashboardInterval).
		Msg("snapshot poller starting")

	go p.pollLoop(ctx, "markets", p.pollInterval, func(ctx context.Context) error {
		return p.snapshots.RefreshMarkets(ctx, p.currency, p.summaryLimit)
	})

	go p.pollLoop(ctx, "rates", p.pollInterval, func(ctx context.Context) error {
		return p.snapshots.RefreshRates(ctx, p.base)
	})

	if p.dashboardLimit > 0 {
		go p.pollLoop(ctx, "dashboard", p.dashboardInterval, func(ctx context.Context) error {
			return p.snapshots.RefreshMarkets(ctx, p.currency, p.dashboardLimit)
		})
	}

	<-ctx.Done()
	log.Info().Msg("snapshot poller stopped")
}

func (p *SnapshotPoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	p.runOnce(ctx, name, fn)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx, name, fn)
		}
	}
}

func (p *SnapshotPoller) runOnce(ctx context.Context, name string, fn func(context.Context) error) {
	ctx, span := p.tracer.Start(ctx, "poller."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		log.Error().Err(err).Str("poller", name).Msg("poll cycle failed")
	}
}
