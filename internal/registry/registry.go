// Package registry maintains the universe of tradable pairs common to the
// enabled exchanges, backed by a TTL cache that survives restarts.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"arbradar/internal/exchange"
)

// Config holds registry settings.
type Config struct {
	// TTL is how long a fetched universe stays fresh.
	TTL time.Duration

	// Limit caps the universe size (0 means unlimited).
	Limit int
}

// Registry serves the canonical symbol universe. It refreshes lazily when
// the cached entry goes stale and persists every refresh through the store.
// Safe for concurrent use; the scheduler loop is the only writer in
// practice but administrative refreshes share the same guard.
type Registry struct {
	adapters []exchange.Adapter
	store    Store
	cfg      Config
	logger   *slog.Logger

	mu    sync.RWMutex
	entry *Entry

	now func() time.Time
}

func New(adapters []exchange.Adapter, store Store, cfg Config, logger *slog.Logger) *Registry {
	r := &Registry{
		adapters: adapters,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}

	entry, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load symbol cache, starting cold", "error", err)
	} else if entry != nil {
		r.entry = entry
		logger.Info("Loaded symbol cache", "symbols", len(entry.Tokens), "fetchedAt", entry.FetchedAt)
	}
	return r
}

// Symbols returns the ordered symbol universe, refreshing first when the
// cached entry is stale. A failed refresh falls back to the last-known-good
// set; only a cold start with no cache surfaces the error upward.
func (r *Registry) Symbols(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	entry := r.entry
	r.mu.RUnlock()

	if entry.Fresh(r.now(), r.cfg.TTL) {
		return append([]string(nil), entry.Tokens...), nil
	}

	if err := r.Refresh(ctx); err != nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		if r.entry == nil {
			return nil, fmt.Errorf("symbol universe unavailable: %w", err)
		}
		r.logger.Warn("Registry refresh failed, serving last-known-good set",
			"symbols", len(r.entry.Tokens), "error", err)
		return append([]string(nil), r.entry.Tokens...), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.entry.Tokens...), nil
}

// Refresh fetches every enabled exchange's instrument catalog and replaces
// the universe with their intersection. An empty intersection degrades to
// the union of responders; only all exchanges failing is an error.
func (r *Registry) Refresh(ctx context.Context) error {
	type result struct {
		name    string
		symbols []string
	}

	results := make(chan result, len(r.adapters))
	var wg sync.WaitGroup
	for _, adapter := range r.adapters {
		wg.Add(1)
		go func(adapter exchange.Adapter) {
			defer wg.Done()
			symbols, err := adapter.Instruments(ctx)
			if err != nil {
				r.logger.Warn("Listing fetch failed", "exchange", adapter.Name(), "error", err)
				return
			}
			results <- result{name: adapter.Name(), symbols: symbols}
		}(adapter)
	}
	wg.Wait()
	close(results)

	var sets []map[string]bool
	var responders []string
	for res := range results {
		set := make(map[string]bool, len(res.symbols))
		for _, symbol := range res.symbols {
			set[symbol] = true
		}
		sets = append(sets, set)
		responders = append(responders, res.name)
	}

	if len(sets) == 0 {
		return fmt.Errorf("all %d exchanges failed the listing call", len(r.adapters))
	}

	tokens := intersect(sets)
	if len(tokens) == 0 {
		// Documented degradation: an empty intersection usually means one
		// exchange's listing shape changed, not that no pairs overlap.
		tokens = union(sets)
		r.logger.Warn("Empty symbol intersection, falling back to union",
			"responders", responders, "symbols", len(tokens))
	}

	sort.Strings(tokens)
	if r.cfg.Limit > 0 && len(tokens) > r.cfg.Limit {
		tokens = tokens[:r.cfg.Limit]
	}

	entry := &Entry{FetchedAt: r.now(), Tokens: tokens}
	if err := r.store.Save(entry); err != nil {
		r.logger.Warn("Failed to persist symbol cache", "error", err)
	}

	r.mu.Lock()
	r.entry = entry
	r.mu.Unlock()

	r.logger.Info("Symbol universe refreshed",
		"symbols", len(tokens), "responders", len(responders), "enabled", len(r.adapters))
	return nil
}

func intersect(sets []map[string]bool) []string {
	var tokens []string
	for symbol := range sets[0] {
		inAll := true
		for _, set := range sets[1:] {
			if !set[symbol] {
				inAll = false
				break
			}
		}
		if inAll {
			tokens = append(tokens, symbol)
		}
	}
	return tokens
}

func union(sets []map[string]bool) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, set := range sets {
		for symbol := range set {
			if !seen[symbol] {
				seen[symbol] = true
				tokens = append(tokens, symbol)
			}
		}
	}
	return tokens
}
