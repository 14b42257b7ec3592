package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const binanceBaseURL = "https://api.binance.com"

// Binance quotes from the spot bookTicker endpoint and lists instruments
// from exchangeInfo.
type Binance struct {
	// BaseURL is overridable for tests.
	BaseURL string

	client     *http.Client
	quoteAsset string
}

func NewBinance(client *http.Client, quoteAsset string) *Binance {
	return &Binance{BaseURL: binanceBaseURL, client: client, quoteAsset: quoteAsset}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) Quote(ctx context.Context, symbol string) (Quote, error) {
	var resp struct {
		BidPrice string `json:"bidPrice"`
		AskPrice string `json:"askPrice"`
	}
	url := fmt.Sprintf("%s/api/v3/ticker/bookTicker?symbol=%s", b.BaseURL, Native(b.Name(), symbol))
	if err := getJSON(ctx, b.client, url, &resp); err != nil {
		return Quote{}, err
	}

	bid, okBid := parsePrice(resp.BidPrice)
	ask, okAsk := parsePrice(resp.AskPrice)
	if !okBid || !okAsk {
		return Quote{}, fmt.Errorf("%w: bookTicker missing bid/ask for %s", ErrBadSchema, symbol)
	}

	return Quote{
		Exchange:   b.Name(),
		Symbol:     symbol,
		Bid:        bid,
		Ask:        ask,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (b *Binance) Instruments(ctx context.Context) ([]string, error) {
	var resp struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			QuoteAsset string `json:"quoteAsset"`
			Status     string `json:"status"`
		} `json:"symbols"`
	}
	url := b.BaseURL + "/api/v3/exchangeInfo"
	if err := getJSON(ctx, b.client, url, &resp); err != nil {
		return nil, err
	}
	if len(resp.Symbols) == 0 {
		return nil, fmt.Errorf("%w: exchangeInfo returned no symbols", ErrBadSchema)
	}

	var symbols []string
	for _, s := range resp.Symbols {
		if s.QuoteAsset != b.quoteAsset || s.Status != "TRADING" {
			continue
		}
		if canonical := Canonical(s.Symbol, s.QuoteAsset); canonical != "" {
			symbols = append(symbols, canonical)
		}
	}
	return symbols, nil
}
