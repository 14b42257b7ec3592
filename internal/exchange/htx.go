package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const htxBaseURL = "https://api.huobi.pro"

// HTX (Huobi) exposes bid/ask as [price, amount] arrays in the merged
// ticker; when those are absent the close price serves as a degraded
// last-price quote.
type HTX struct {
	BaseURL string

	client     *http.Client
	quoteAsset string
}

func NewHTX(client *http.Client, quoteAsset string) *HTX {
	return &HTX{BaseURL: htxBaseURL, client: client, quoteAsset: quoteAsset}
}

func (h *HTX) Name() string { return "htx" }

func (h *HTX) Quote(ctx context.Context, symbol string) (Quote, error) {
	var resp struct {
		Status string `json:"status"`
		Tick   struct {
			Bid   []float64 `json:"bid"`
			Ask   []float64 `json:"ask"`
			Close float64   `json:"close"`
		} `json:"tick"`
	}
	url := fmt.Sprintf("%s/market/detail/merged?symbol=%s", h.BaseURL, Native(h.Name(), symbol))
	if err := getJSON(ctx, h.client, url, &resp); err != nil {
		return Quote{}, err
	}
	if resp.Status != "ok" {
		return Quote{}, fmt.Errorf("%w: status %q", ErrUnavailable, resp.Status)
	}

	var bid, ask float64
	if len(resp.Tick.Bid) > 0 {
		bid = resp.Tick.Bid[0]
	}
	if len(resp.Tick.Ask) > 0 {
		ask = resp.Tick.Ask[0]
	}
	if bid <= 0 || ask <= 0 {
		if resp.Tick.Close <= 0 {
			return Quote{}, fmt.Errorf("%w: merged tick missing bid/ask for %s", ErrBadSchema, symbol)
		}
		bid, ask = resp.Tick.Close, resp.Tick.Close
	}

	return Quote{
		Exchange:   h.Name(),
		Symbol:     symbol,
		Bid:        bid,
		Ask:        ask,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (h *HTX) Instruments(ctx context.Context) ([]string, error) {
	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Symbol        string `json:"symbol"`
			QuoteCurrency string `json:"quote-currency"`
			State         string `json:"state"`
		} `json:"data"`
	}
	url := h.BaseURL + "/v1/common/symbols"
	if err := getJSON(ctx, h.client, url, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("%w: status %q", ErrUnavailable, resp.Status)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty symbol catalog", ErrBadSchema)
	}

	var symbols []string
	for _, s := range resp.Data {
		if !strings.EqualFold(s.QuoteCurrency, h.quoteAsset) || s.State != "online" {
			continue
		}
		if canonical := Canonical(s.Symbol, h.quoteAsset); canonical != "" {
			symbols = append(symbols, canonical)
		}
	}
	return symbols, nil
}
