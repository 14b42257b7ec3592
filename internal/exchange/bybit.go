package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const bybitBaseURL = "https://api.bybit.com"

// Bybit uses the v5 unified market API. Every response carries a retCode
// envelope; anything but 0 is treated as the source being unavailable.
type Bybit struct {
	BaseURL string

	client     *http.Client
	quoteAsset string
}

func NewBybit(client *http.Client, quoteAsset string) *Bybit {
	return &Bybit{BaseURL: bybitBaseURL, client: client, quoteAsset: quoteAsset}
}

func (b *Bybit) Name() string { return "bybit" }

func (b *Bybit) Quote(ctx context.Context, symbol string) (Quote, error) {
	var resp struct {
		RetCode int `json:"retCode"`
		Result  struct {
			List []struct {
				Bid1Price string `json:"bid1Price"`
				Ask1Price string `json:"ask1Price"`
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/v5/market/tickers?category=spot&symbol=%s", b.BaseURL, Native(b.Name(), symbol))
	if err := getJSON(ctx, b.client, url, &resp); err != nil {
		return Quote{}, err
	}
	if resp.RetCode != 0 {
		return Quote{}, fmt.Errorf("%w: retCode %d", ErrUnavailable, resp.RetCode)
	}
	if len(resp.Result.List) == 0 {
		return Quote{}, fmt.Errorf("%w: empty ticker list for %s", ErrBadSchema, symbol)
	}

	ticker := resp.Result.List[0]
	bid, okBid := parsePrice(ticker.Bid1Price)
	ask, okAsk := parsePrice(ticker.Ask1Price)
	if !okBid || !okAsk {
		// Degraded source: fall back to the last trade price.
		last, okLast := parsePrice(ticker.LastPrice)
		if !okLast {
			return Quote{}, fmt.Errorf("%w: ticker missing bid/ask for %s", ErrBadSchema, symbol)
		}
		bid, ask = last, last
	}

	return Quote{
		Exchange:   b.Name(),
		Symbol:     symbol,
		Bid:        bid,
		Ask:        ask,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (b *Bybit) Instruments(ctx context.Context) ([]string, error) {
	var resp struct {
		RetCode int `json:"retCode"`
		Result  struct {
			List []struct {
				Symbol    string `json:"symbol"`
				QuoteCoin string `json:"quoteCoin"`
				Status    string `json:"status"`
			} `json:"list"`
		} `json:"result"`
	}
	url := b.BaseURL + "/v5/market/instruments-info?category=spot"
	if err := getJSON(ctx, b.client, url, &resp); err != nil {
		return nil, err
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("%w: retCode %d", ErrUnavailable, resp.RetCode)
	}
	if len(resp.Result.List) == 0 {
		return nil, fmt.Errorf("%w: empty instrument list", ErrBadSchema)
	}

	var symbols []string
	for _, s := range resp.Result.List {
		if s.QuoteCoin != b.quoteAsset || s.Status != "Trading" {
			continue
		}
		if canonical := Canonical(s.Symbol, s.QuoteCoin); canonical != "" {
			symbols = append(symbols, canonical)
		}
	}
	return symbols, nil
}
