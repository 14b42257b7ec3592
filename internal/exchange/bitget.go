package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const bitgetBaseURL = "https://api.bitget.com"

// Bitget spot v1 spells symbols with a _SPBL suffix and reports the book
// top as buyOne/sellOne.
type Bitget struct {
	BaseURL string

	client     *http.Client
	quoteAsset string
}

func NewBitget(client *http.Client, quoteAsset string) *Bitget {
	return &Bitget{BaseURL: bitgetBaseURL, client: client, quoteAsset: quoteAsset}
}

func (b *Bitget) Name() string { return "bitget" }

func (b *Bitget) Quote(ctx context.Context, symbol string) (Quote, error) {
	var resp struct {
		Code string `json:"code"`
		Data struct {
			BuyOne  string `json:"buyOne"`
			SellOne string `json:"sellOne"`
			Close   string `json:"close"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/api/spot/v1/market/ticker?symbol=%s", b.BaseURL, Native(b.Name(), symbol))
	if err := getJSON(ctx, b.client, url, &resp); err != nil {
		return Quote{}, err
	}
	if resp.Code != "00000" {
		return Quote{}, fmt.Errorf("%w: code %s", ErrUnavailable, resp.Code)
	}

	// buyOne is the best bid, sellOne the best ask.
	bid, okBid := parsePrice(resp.Data.BuyOne)
	ask, okAsk := parsePrice(resp.Data.SellOne)
	if !okBid || !okAsk {
		last, okLast := parsePrice(resp.Data.Close)
		if !okLast {
			return Quote{}, fmt.Errorf("%w: ticker missing buyOne/sellOne for %s", ErrBadSchema, symbol)
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

func (b *Bitget) Instruments(ctx context.Context) ([]string, error) {
	var resp struct {
		Code string `json:"code"`
		Data []struct {
			SymbolName string `json:"symbolName"`
			QuoteCoin  string `json:"quoteCoin"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	url := b.BaseURL + "/api/spot/v1/public/products"
	if err := getJSON(ctx, b.client, url, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "00000" {
		return nil, fmt.Errorf("%w: code %s", ErrUnavailable, resp.Code)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty product catalog", ErrBadSchema)
	}

	var symbols []string
	for _, s := range resp.Data {
		if s.QuoteCoin != b.quoteAsset || s.Status != "online" {
			continue
		}
		if canonical := Canonical(s.SymbolName, s.QuoteCoin); canonical != "" {
			symbols = append(symbols, canonical)
		}
	}
	return symbols, nil
}
