package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"arbradar/internal/spread"
)

func testOpportunity() spread.Opportunity {
	return spread.Opportunity{
		Symbol:       "XRP/USDT",
		BuyExchange:  "binance",
		BuyPrice:     1.01,
		SellExchange: "bybit",
		SellPrice:    1.05,
		SpreadPct:    3.96,
		Network:      "Memo",
	}
}

func quietLogrus() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("token123", "chat42", quietLogrus())
	tg.APIURL = srv.URL

	if err := tg.Notify(context.Background(), testOpportunity()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPath != "/bottoken123/sendMessage" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotBody["chat_id"] != "chat42" {
		t.Errorf("Unexpected chat_id %q", gotBody["chat_id"])
	}
	if gotBody["parse_mode"] != "Markdown" {
		t.Errorf("Unexpected parse_mode %q", gotBody["parse_mode"])
	}
	text := gotBody["text"]
	for _, want := range []string{"XRP/USDT", "binance", "bybit", "3.96%", "Memo"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected message to mention %q, got:\n%s", want, text)
		}
	}
}

func TestTelegramNotifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tg := NewTelegram("token123", "chat42", quietLogrus())
	tg.APIURL = srv.URL

	if err := tg.Notify(context.Background(), testOpportunity()); err == nil {
		t.Error("Expected error on non-200 response")
	}
}

func TestAlertTitleTiers(t *testing.T) {
	cases := []struct {
		spreadPct float64
		want      string
	}{
		{8.0, "Jackpot Incoming!"},
		{7.5, "Jackpot Incoming!"},
		{5.5, "Hot Arbitrage Opportunity!"},
		{3.2, "Nice Spread"},
		{1.5, "Tiny Crack in the Wall"},
		{1.0, "Arbitrage Alert"},
	}

	for _, tc := range cases {
		if got := alertTitle(tc.spreadPct); got != tc.want {
			t.Errorf("alertTitle(%v) = %q, want %q", tc.spreadPct, got, tc.want)
		}
	}
}
