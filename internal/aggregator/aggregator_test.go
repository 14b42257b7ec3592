package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"arbradar/internal/exchange"
)

type stubAdapter struct {
	name  string
	quote exchange.Quote
	err   error
	delay time.Duration
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Quote(ctx context.Context, symbol string) (exchange.Quote, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return exchange.Quote{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return exchange.Quote{}, s.err
	}
	quote := s.quote
	quote.Exchange = s.name
	quote.Symbol = symbol
	return quote, nil
}

func (s *stubAdapter) Instruments(ctx context.Context) ([]string, error) {
	return nil, errors.New("not used")
}

func newTestAggregator(adapters ...exchange.Adapter) *Aggregator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(adapters, Config{
		RequestTimeout:       100 * time.Millisecond,
		RequestsPerSecond:    1000,
		MaxConcurrentSymbols: 4,
	}, logger)
}

func TestCollectIsolatesFailures(t *testing.T) {
	agg := newTestAggregator(
		&stubAdapter{name: "a", quote: exchange.Quote{Bid: 1.00, Ask: 1.01}},
		&stubAdapter{name: "b", err: exchange.ErrUnavailable},
		&stubAdapter{name: "c", quote: exchange.Quote{Bid: 1.05, Ask: 1.06}},
	)

	quotes := agg.Collect(context.Background(), "XRP/USDT")

	if len(quotes) != 2 {
		t.Fatalf("Expected 2 quotes, got %d", len(quotes))
	}
	if _, ok := quotes["b"]; ok {
		t.Error("Failed adapter must not appear in the quote set")
	}
	if quotes["a"].Ask != 1.01 || quotes["c"].Bid != 1.05 {
		t.Errorf("Unexpected quotes: %+v", quotes)
	}
}

func TestCollectExcludesInvalidQuotes(t *testing.T) {
	agg := newTestAggregator(
		&stubAdapter{name: "a", quote: exchange.Quote{Bid: 0, Ask: 1.01}},
		&stubAdapter{name: "b", quote: exchange.Quote{Bid: 1.05, Ask: 1.06}},
	)

	quotes := agg.Collect(context.Background(), "XRP/USDT")

	if len(quotes) != 1 {
		t.Fatalf("Expected 1 quote, got %d", len(quotes))
	}
	if _, ok := quotes["a"]; ok {
		t.Error("Invalid quote must never be stored in the set")
	}
}

func TestCollectTimesOutSlowAdapter(t *testing.T) {
	agg := newTestAggregator(
		&stubAdapter{name: "slow", delay: time.Second, quote: exchange.Quote{Bid: 1, Ask: 1}},
		&stubAdapter{name: "fast", quote: exchange.Quote{Bid: 1.05, Ask: 1.06}},
	)

	started := time.Now()
	quotes := agg.Collect(context.Background(), "XRP/USDT")

	if elapsed := time.Since(started); elapsed > 500*time.Millisecond {
		t.Errorf("Slow adapter blocked the cycle for %v", elapsed)
	}
	if len(quotes) != 1 {
		t.Fatalf("Expected only the fast quote, got %d", len(quotes))
	}
	if _, ok := quotes["fast"]; !ok {
		t.Error("Expected fast adapter's quote to survive")
	}
}

func TestCollectAll(t *testing.T) {
	agg := newTestAggregator(
		&stubAdapter{name: "a", quote: exchange.Quote{Bid: 1.00, Ask: 1.01}},
		&stubAdapter{name: "b", quote: exchange.Quote{Bid: 1.05, Ask: 1.06}},
	)

	symbols := []string{"XRP/USDT", "XLM/USDT", "TRX/USDT"}
	results := agg.CollectAll(context.Background(), symbols)

	if len(results) != len(symbols) {
		t.Fatalf("Expected %d quote sets, got %d", len(symbols), len(results))
	}
	for _, symbol := range symbols {
		quotes, ok := results[symbol]
		if !ok {
			t.Errorf("Missing quote set for %s", symbol)
			continue
		}
		if len(quotes) != 2 {
			t.Errorf("Expected 2 quotes for %s, got %d", symbol, len(quotes))
		}
		if quotes["a"].Symbol != symbol {
			t.Errorf("Quote carries wrong symbol: %+v", quotes["a"])
		}
	}
}

func TestCollectAllOmitsEmptySets(t *testing.T) {
	agg := newTestAggregator(
		&stubAdapter{name: "a", err: exchange.ErrUnavailable},
		&stubAdapter{name: "b", err: exchange.ErrUnavailable},
	)

	results := agg.CollectAll(context.Background(), []string{"XRP/USDT"})
	if len(results) != 0 {
		t.Errorf("Expected no quote sets when every adapter fails, got %v", results)
	}
}

func TestCollectAllStopsOnCancel(t *testing.T) {
	agg := newTestAggregator(
		&stubAdapter{name: "a", quote: exchange.Quote{Bid: 1, Ask: 1}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := agg.CollectAll(ctx, []string{"XRP/USDT", "XLM/USDT"})
	if len(results) != 0 {
		t.Errorf("Expected no results after cancellation, got %v", results)
	}
}
