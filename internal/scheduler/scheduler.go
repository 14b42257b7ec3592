// Package scheduler drives the periodic aggregation cycle: refresh the
// symbol universe if stale, collect quotes, evaluate spreads, rank, alert,
// publish. No condition inside a cycle is fatal; the loop runs until its
// context is cancelled.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"arbradar/internal/aggregator"
	"arbradar/internal/alert"
	"arbradar/internal/notify"
	"arbradar/internal/registry"
	"arbradar/internal/spread"
)

// History receives each published table for persistence. Optional.
type History interface {
	CreateOpportunities(ctx context.Context, opps []spread.Opportunity) error
}

// Config holds scheduler settings.
type Config struct {
	// Interval is the sleep between cycles.
	Interval time.Duration

	// TopN truncates the published table (0 keeps all).
	TopN int
}

// Scheduler owns the loop and the mutable state shared across cycles
// (the registry cache and the alert deduper), both injected.
type Scheduler struct {
	registry  *registry.Registry
	agg       *aggregator.Aggregator
	calc      *spread.Calculator
	deduper   *alert.Deduper
	notifiers []notify.Notifier
	history   History
	snapshots *SnapshotStore
	cfg       Config
	logger    *slog.Logger
}

func New(
	reg *registry.Registry,
	agg *aggregator.Aggregator,
	calc *spread.Calculator,
	deduper *alert.Deduper,
	notifiers []notify.Notifier,
	history History,
	snapshots *SnapshotStore,
	cfg Config,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		registry:  reg,
		agg:       agg,
		calc:      calc,
		deduper:   deduper,
		notifiers: notifiers,
		history:   history,
		snapshots: snapshots,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes cycles until ctx is cancelled. The first cycle starts
// immediately; cancellation aborts the inter-cycle sleep promptly while
// in-flight adapter calls finish within their own timeouts.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started", "interval", s.cfg.Interval, "topN", s.cfg.TopN)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	started := time.Now().UTC()

	symbols, err := s.registry.Symbols(ctx)
	if err != nil {
		s.logger.Warn("No symbol universe this cycle", "error", err)
	}
	if len(symbols) == 0 {
		s.snapshots.Publish(Snapshot{PublishedAt: started})
		return
	}

	quoteSets := s.agg.CollectAll(ctx, symbols)

	opportunities := make([]spread.Opportunity, 0, len(quoteSets))
	for _, symbol := range symbols {
		quotes, ok := quoteSets[symbol]
		if !ok {
			continue
		}
		if opp, ok := s.calc.Evaluate(symbol, quotes); ok {
			opportunities = append(opportunities, opp)
		}
	}

	table := spread.Rank(opportunities, s.cfg.TopN)

	for _, opp := range table {
		if ctx.Err() != nil {
			break
		}
		if !s.deduper.ShouldNotify(opp.Symbol, opp.SpreadPct) {
			continue
		}
		s.dispatch(ctx, opp)
		s.deduper.RecordNotified(opp.Symbol, opp.SpreadPct)
	}

	s.snapshots.Publish(Snapshot{Opportunities: table, PublishedAt: started})

	if s.history != nil && len(table) > 0 {
		historyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.history.CreateOpportunities(historyCtx, table); err != nil {
			s.logger.Warn("Failed to persist opportunity history", "error", err)
		}
		cancel()
	}

	s.logger.Info("Cycle completed",
		"symbols", len(symbols),
		"quoted", len(quoteSets),
		"opportunities", len(table),
		"duration", time.Since(started).Round(time.Millisecond))
}

// dispatch hands one opportunity to every sink. Delivery failures are
// logged and contained; they never propagate into the cycle.
func (s *Scheduler) dispatch(ctx context.Context, opp spread.Opportunity) {
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, opp); err != nil {
			s.logger.Warn("Notification delivery failed",
				"sink", notifier.Name(), "symbol", opp.Symbol, "error", err)
		}
	}
}
