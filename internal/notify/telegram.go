package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"arbradar/internal/spread"
)

const telegramAPIURL = "https://api.telegram.org"

// Telegram posts Markdown-formatted alerts to a chat via the Bot API.
type Telegram struct {
	// APIURL is overridable for tests.
	APIURL string

	client *http.Client
	token  string
	chatID string
	logger *logrus.Logger
}

func NewTelegram(token, chatID string, logger *logrus.Logger) *Telegram {
	return &Telegram{
		APIURL: telegramAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
		token:  token,
		chatID: chatID,
		logger: logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, opp spread.Opportunity) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       formatAlert(opp),
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.APIURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	t.logger.Infof("Alert sent for %s (spread %.2f%%)", opp.Symbol, opp.SpreadPct)
	return nil
}

// alertTitle tiers the alert headline by spread size.
func alertTitle(spreadPct float64) string {
	switch {
	case spreadPct >= 7.5:
		return "Jackpot Incoming!"
	case spreadPct >= 5:
		return "Hot Arbitrage Opportunity!"
	case spreadPct >= 3:
		return "Nice Spread"
	case spreadPct >= 1.5:
		return "Tiny Crack in the Wall"
	default:
		return "Arbitrage Alert"
	}
}

func formatAlert(opp spread.Opportunity) string {
	return fmt.Sprintf(
		"*%s*\n\n"+
			"Pair: `%s`\n"+
			"Buy on: *%s* @ `%.6f`\n"+
			"Sell on: *%s* @ `%.6f`\n"+
			"Spread: *%.2f%%*\n"+
			"Network: %s",
		alertTitle(opp.SpreadPct),
		opp.Symbol,
		opp.BuyExchange, opp.BuyPrice,
		opp.SellExchange, opp.SellPrice,
		opp.SpreadPct,
		opp.Network,
	)
}
