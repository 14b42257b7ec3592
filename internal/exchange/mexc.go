package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const mexcBaseURL = "https://api.mexc.com"

// MEXC mirrors the Binance v3 API shape but uses its own listing flags.
type MEXC struct {
	BaseURL string

	client     *http.Client
	quoteAsset string
}

func NewMEXC(client *http.Client, quoteAsset string) *MEXC {
	return &MEXC{BaseURL: mexcBaseURL, client: client, quoteAsset: quoteAsset}
}

func (m *MEXC) Name() string { return "mexc" }

func (m *MEXC) Quote(ctx context.Context, symbol string) (Quote, error) {
	var resp struct {
		BidPrice string `json:"bidPrice"`
		AskPrice string `json:"askPrice"`
	}
	url := fmt.Sprintf("%s/api/v3/ticker/bookTicker?symbol=%s", m.BaseURL, Native(m.Name(), symbol))
	if err := getJSON(ctx, m.client, url, &resp); err != nil {
		return Quote{}, err
	}

	bid, okBid := parsePrice(resp.BidPrice)
	ask, okAsk := parsePrice(resp.AskPrice)
	if !okBid || !okAsk {
		return Quote{}, fmt.Errorf("%w: bookTicker missing bid/ask for %s", ErrBadSchema, symbol)
	}

	return Quote{
		Exchange:   m.Name(),
		Symbol:     symbol,
		Bid:        bid,
		Ask:        ask,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (m *MEXC) Instruments(ctx context.Context) ([]string, error) {
	var resp struct {
		Symbols []struct {
			Symbol             string `json:"symbol"`
			QuoteAsset         string `json:"quoteAsset"`
			IsSpotTradingAllowed bool `json:"isSpotTradingAllowed"`
		} `json:"symbols"`
	}
	url := m.BaseURL + "/api/v3/exchangeInfo"
	if err := getJSON(ctx, m.client, url, &resp); err != nil {
		return nil, err
	}
	if len(resp.Symbols) == 0 {
		return nil, fmt.Errorf("%w: exchangeInfo returned no symbols", ErrBadSchema)
	}

	var symbols []string
	for _, s := range resp.Symbols {
		if s.QuoteAsset != m.quoteAsset || !s.IsSpotTradingAllowed {
			continue
		}
		if canonical := Canonical(s.Symbol, s.QuoteAsset); canonical != "" {
			symbols = append(symbols, canonical)
		}
	}
	return symbols, nil
}
