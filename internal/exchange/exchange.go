// Package exchange defines the canonical quote model and the per-exchange
// HTTP adapters that translate heterogeneous exchange APIs into it.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Failure sentinels. Adapters never return partial data: every transport
// problem maps to ErrUnavailable and every response-shape problem to
// ErrBadSchema, so callers can treat both as "no quote this cycle".
var (
	// ErrUnavailable covers timeouts, connection failures and non-200 statuses.
	ErrUnavailable = errors.New("exchange unavailable")

	// ErrBadSchema covers missing or malformed required response fields.
	ErrBadSchema = errors.New("unexpected response shape")
)

// Quote is one exchange's current best bid/ask for a canonical symbol.
// Bid is the best price the pair can be sold to the exchange at, Ask the
// best price it can be bought at. Sources that only expose a last-trade
// price yield a degraded quote with Bid == Ask == last.
type Quote struct {
	Exchange   string    `json:"exchange"`
	Symbol     string    `json:"symbol"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	ObservedAt time.Time `json:"observed_at"`
}

// Valid reports whether the quote may participate in spread computation.
func (q Quote) Valid() bool {
	return q.Bid > 0 && q.Ask > 0
}

// QuoteSet maps exchange name to its quote for one symbol within one
// aggregation cycle. A missing key means the exchange returned no usable
// quote; a zero-value Quote is never stored.
type QuoteSet map[string]Quote

// Adapter is implemented once per exchange. Quote performs a single bounded
// outbound read for one symbol; Instruments fetches the full catalog of
// canonical symbols quoted in the configured settlement asset. Both are
// idempotent and free of shared mutable state.
type Adapter interface {
	Name() string
	Quote(ctx context.Context, symbol string) (Quote, error)
	Instruments(ctx context.Context) ([]string, error)
}

// NewAdapter constructs the adapter registered under name.
// The client is shared between adapters; its timeout bounds every request.
func NewAdapter(name string, client *http.Client, quoteAsset string) (Adapter, error) {
	switch name {
	case "binance":
		return NewBinance(client, quoteAsset), nil
	case "bybit":
		return NewBybit(client, quoteAsset), nil
	case "mexc":
		return NewMEXC(client, quoteAsset), nil
	case "htx":
		return NewHTX(client, quoteAsset), nil
	case "okx":
		return NewOKX(client, quoteAsset), nil
	case "bitget":
		return NewBitget(client, quoteAsset), nil
	}
	return nil, fmt.Errorf("unknown exchange %q", name)
}
