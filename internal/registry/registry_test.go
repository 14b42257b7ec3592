package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"arbradar/internal/exchange"
)

type stubAdapter struct {
	name    string
	symbols []string
	err     error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Quote(ctx context.Context, symbol string) (exchange.Quote, error) {
	return exchange.Quote{}, errors.New("not used")
}

func (s *stubAdapter) Instruments(ctx context.Context) ([]string, error) {
	return s.symbols, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T, adapters []exchange.Adapter, ttl time.Duration) *Registry {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	return New(adapters, store, Config{TTL: ttl}, discardLogger())
}

func TestRefreshIntersects(t *testing.T) {
	reg := newTestRegistry(t, []exchange.Adapter{
		&stubAdapter{name: "a", symbols: []string{"X/USDT", "Y/USDT", "Z/USDT"}},
		&stubAdapter{name: "b", symbols: []string{"Y/USDT", "Z/USDT"}},
	}, time.Hour)

	symbols, err := reg.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"Y/USDT", "Z/USDT"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("Expected %v, got %v", want, symbols)
	}
}

func TestRefreshFallsBackToUnion(t *testing.T) {
	reg := newTestRegistry(t, []exchange.Adapter{
		&stubAdapter{name: "a", symbols: []string{"X/USDT", "Y/USDT"}},
		&stubAdapter{name: "b", symbols: []string{"Y/USDT", "Z/USDT"}},
		&stubAdapter{name: "c", symbols: []string{}},
	}, time.Hour)

	symbols, err := reg.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"X/USDT", "Y/USDT", "Z/USDT"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("Expected union %v, got %v", want, symbols)
	}
}

func TestRefreshToleratesPartialFailure(t *testing.T) {
	reg := newTestRegistry(t, []exchange.Adapter{
		&stubAdapter{name: "a", symbols: []string{"X/USDT", "Y/USDT"}},
		&stubAdapter{name: "b", err: errors.New("listing down")},
	}, time.Hour)

	symbols, err := reg.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"X/USDT", "Y/USDT"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("Expected %v from sole responder, got %v", want, symbols)
	}
}

func TestColdStartAllFailing(t *testing.T) {
	reg := newTestRegistry(t, []exchange.Adapter{
		&stubAdapter{name: "a", err: errors.New("down")},
		&stubAdapter{name: "b", err: errors.New("down")},
	}, time.Hour)

	if _, err := reg.Symbols(context.Background()); err == nil {
		t.Error("Expected error on cold start with no responders")
	}
}

func TestStaleServesLastKnownGoodOnFailedRefresh(t *testing.T) {
	failing := &stubAdapter{name: "a", symbols: []string{"X/USDT"}}
	reg := newTestRegistry(t, []exchange.Adapter{failing}, time.Hour)

	if _, err := reg.Symbols(context.Background()); err != nil {
		t.Fatalf("Seed refresh failed: %v", err)
	}

	// Entry goes stale and the next refresh fails wholesale.
	reg.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	failing.err = errors.New("down")
	failing.symbols = nil

	symbols, err := reg.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "X/USDT" {
		t.Errorf("Expected last-known-good set, got %v", symbols)
	}
}

func TestFreshCacheSkipsListing(t *testing.T) {
	adapter := &stubAdapter{name: "a", symbols: []string{"X/USDT"}}
	reg := newTestRegistry(t, []exchange.Adapter{adapter}, time.Hour)

	if _, err := reg.Symbols(context.Background()); err != nil {
		t.Fatalf("Seed refresh failed: %v", err)
	}

	// A fresh entry must be served even if the exchange would now fail.
	adapter.err = errors.New("down")
	symbols, err := reg.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "X/USDT" {
		t.Errorf("Expected cached set, got %v", symbols)
	}
}

func TestLimitCapsUniverse(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	reg := New([]exchange.Adapter{
		&stubAdapter{name: "a", symbols: []string{"C/USDT", "A/USDT", "B/USDT"}},
	}, store, Config{TTL: time.Hour, Limit: 2}, discardLogger())

	symbols, err := reg.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"A/USDT", "B/USDT"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("Expected sorted capped %v, got %v", want, symbols)
	}
}

func TestCacheSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileStore(path)

	first := New([]exchange.Adapter{
		&stubAdapter{name: "a", symbols: []string{"X/USDT"}},
	}, store, Config{TTL: time.Hour}, discardLogger())
	if _, err := first.Symbols(context.Background()); err != nil {
		t.Fatalf("Seed refresh failed: %v", err)
	}

	// New process: the adapter is down but the persisted cache is fresh.
	second := New([]exchange.Adapter{
		&stubAdapter{name: "a", err: errors.New("down")},
	}, NewFileStore(path), Config{TTL: time.Hour}, discardLogger())

	symbols, err := second.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "X/USDT" {
		t.Errorf("Expected persisted set after restart, got %v", symbols)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	entry, err := store.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected nil entry for missing file, got %+v", entry)
	}
}

func TestEntryFresh(t *testing.T) {
	now := time.Now()
	entry := &Entry{FetchedAt: now.Add(-time.Minute)}

	if !entry.Fresh(now, time.Hour) {
		t.Error("Expected entry within TTL to be fresh")
	}
	if entry.Fresh(now, time.Second) {
		t.Error("Expected entry past TTL to be stale")
	}

	var nilEntry *Entry
	if nilEntry.Fresh(now, time.Hour) {
		t.Error("Expected nil entry to be stale")
	}
}
