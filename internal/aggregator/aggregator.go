// Package aggregator fans quote fetches out across the enabled exchange
// adapters with bounded concurrency and bulkhead isolation: one adapter
// failing or timing out never blocks or fails the others.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"arbradar/internal/exchange"
)

// Config holds aggregator settings.
type Config struct {
	// RequestTimeout bounds each adapter call.
	RequestTimeout time.Duration

	// RequestsPerSecond paces outbound quote requests across all adapters
	// to stay under exchange rate limits when the universe is large.
	RequestsPerSecond float64

	// MaxConcurrentSymbols caps concurrent per-symbol fan-outs.
	MaxConcurrentSymbols int
}

// Aggregator collects per-cycle quote sets. Stateless between calls.
type Aggregator struct {
	adapters []exchange.Adapter
	limiter  *rate.Limiter
	cfg      Config
	logger   *slog.Logger
}

func New(adapters []exchange.Adapter, cfg Config, logger *slog.Logger) *Aggregator {
	if cfg.MaxConcurrentSymbols <= 0 {
		cfg.MaxConcurrentSymbols = 1
	}
	return &Aggregator{
		adapters: adapters,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 10),
		cfg:      cfg,
		logger:   logger,
	}
}

// Collect concurrently asks every enabled adapter to quote symbol and
// assembles a QuoteSet from the subset that returned a valid quote.
func (a *Aggregator) Collect(ctx context.Context, symbol string) exchange.QuoteSet {
	quotes := make(exchange.QuoteSet, len(a.adapters))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, adapter := range a.adapters {
		wg.Add(1)
		go func(adapter exchange.Adapter) {
			defer wg.Done()

			if err := a.limiter.Wait(ctx); err != nil {
				return
			}

			quoteCtx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
			defer cancel()

			quote, err := adapter.Quote(quoteCtx, symbol)
			if err != nil {
				a.logger.Debug("No quote", "exchange", adapter.Name(), "symbol", symbol, "error", err)
				return
			}
			if !quote.Valid() {
				return
			}

			mu.Lock()
			quotes[adapter.Name()] = quote
			mu.Unlock()
		}(adapter)
	}
	wg.Wait()

	return quotes
}

// CollectAll collects quote sets for every symbol, bounding the number of
// in-flight per-symbol fan-outs. Symbols whose set came back empty are
// omitted from the result.
func (a *Aggregator) CollectAll(ctx context.Context, symbols []string) map[string]exchange.QuoteSet {
	results := make(map[string]exchange.QuoteSet, len(symbols))

	sem := make(chan struct{}, a.cfg.MaxConcurrentSymbols)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			wg.Wait()
			return results
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			quotes := a.Collect(ctx, symbol)
			if len(quotes) == 0 {
				return
			}

			mu.Lock()
			results[symbol] = quotes
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return results
}
