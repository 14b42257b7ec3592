package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const okxBaseURL = "https://www.okx.com"

// OKX uses dash-separated instrument IDs and a string code envelope.
type OKX struct {
	BaseURL string

	client     *http.Client
	quoteAsset string
}

func NewOKX(client *http.Client, quoteAsset string) *OKX {
	return &OKX{BaseURL: okxBaseURL, client: client, quoteAsset: quoteAsset}
}

func (o *OKX) Name() string { return "okx" }

func (o *OKX) Quote(ctx context.Context, symbol string) (Quote, error) {
	var resp struct {
		Code string `json:"code"`
		Data []struct {
			BidPx string `json:"bidPx"`
			AskPx string `json:"askPx"`
			Last  string `json:"last"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/api/v5/market/ticker?instId=%s", o.BaseURL, Native(o.Name(), symbol))
	if err := getJSON(ctx, o.client, url, &resp); err != nil {
		return Quote{}, err
	}
	if resp.Code != "0" {
		return Quote{}, fmt.Errorf("%w: code %s", ErrUnavailable, resp.Code)
	}
	if len(resp.Data) == 0 {
		return Quote{}, fmt.Errorf("%w: empty ticker data for %s", ErrBadSchema, symbol)
	}

	ticker := resp.Data[0]
	bid, okBid := parsePrice(ticker.BidPx)
	ask, okAsk := parsePrice(ticker.AskPx)
	if !okBid || !okAsk {
		last, okLast := parsePrice(ticker.Last)
		if !okLast {
			return Quote{}, fmt.Errorf("%w: ticker missing bid/ask for %s", ErrBadSchema, symbol)
		}
		bid, ask = last, last
	}

	return Quote{
		Exchange:   o.Name(),
		Symbol:     symbol,
		Bid:        bid,
		Ask:        ask,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (o *OKX) Instruments(ctx context.Context) ([]string, error) {
	var resp struct {
		Code string `json:"code"`
		Data []struct {
			InstID   string `json:"instId"`
			QuoteCcy string `json:"quoteCcy"`
		} `json:"data"`
	}
	url := o.BaseURL + "/api/v5/public/instruments?instType=SPOT"
	if err := getJSON(ctx, o.client, url, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "0" {
		return nil, fmt.Errorf("%w: code %s", ErrUnavailable, resp.Code)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty instrument data", ErrBadSchema)
	}

	var symbols []string
	for _, s := range resp.Data {
		if s.QuoteCcy != o.quoteAsset {
			continue
		}
		if canonical := Canonical(s.InstID, s.QuoteCcy); canonical != "" {
			symbols = append(symbols, canonical)
		}
	}
	return symbols, nil
}
