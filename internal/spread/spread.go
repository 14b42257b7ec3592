// Package spread reduces a symbol's collected quotes to the best
// cross-exchange arbitrage opportunity and ranks opportunities for display.
package spread

import (
	"sort"
	"time"

	"arbradar/internal/exchange"
)

// Opportunity is a derived cross-exchange spread for one symbol, recomputed
// every cycle and never stored by the engine itself.
type Opportunity struct {
	Symbol       string    `json:"symbol"`
	BuyExchange  string    `json:"buy_exchange"`
	BuyPrice     float64   `json:"buy_price"`
	SellExchange string    `json:"sell_exchange"`
	SellPrice    float64   `json:"sell_price"`
	SpreadPct    float64   `json:"spread_pct"`
	Network      string    `json:"network"`
	ObservedAt   time.Time `json:"observed_at"`
}

// Calculator evaluates quote sets against a fixed enabled-exchange order.
// The order is the tie-break rule: when two exchanges share the minimum
// ask (or maximum bid), the one listed first in configuration wins.
type Calculator struct {
	order    []string
	networks map[string]string
}

func NewCalculator(order []string) *Calculator {
	return &Calculator{order: order, networks: defaultNetworks}
}

// Evaluate picks the minimum ask as the buy side and the maximum bid as the
// sell side. It reports false when fewer than two distinct exchanges
// contributed valid quotes, or when the best buy and sell land on the same
// exchange (a same-exchange spread is not an arbitrage opportunity).
func (c *Calculator) Evaluate(symbol string, quotes exchange.QuoteSet) (Opportunity, bool) {
	var buy, sell exchange.Quote
	contributors := 0

	// Iterating in configuration order with strict comparisons keeps the
	// first-listed exchange on ties.
	for _, name := range c.order {
		quote, ok := quotes[name]
		if !ok || !quote.Valid() {
			continue
		}
		contributors++
		if buy.Exchange == "" || quote.Ask < buy.Ask {
			buy = quote
		}
		if sell.Exchange == "" || quote.Bid > sell.Bid {
			sell = quote
		}
	}

	if contributors < 2 || buy.Exchange == sell.Exchange || buy.Ask <= 0 {
		return Opportunity{}, false
	}

	observedAt := buy.ObservedAt
	if sell.ObservedAt.After(observedAt) {
		observedAt = sell.ObservedAt
	}

	return Opportunity{
		Symbol:       symbol,
		BuyExchange:  buy.Exchange,
		BuyPrice:     buy.Ask,
		SellExchange: sell.Exchange,
		SellPrice:    sell.Bid,
		SpreadPct:    (sell.Bid - buy.Ask) / buy.Ask * 100,
		Network:      c.Network(symbol),
		ObservedAt:   observedAt,
	}, true
}

// Network returns the transfer-network label for a symbol, "-" when unknown.
// Display decoration only; it never influences spread math.
func (c *Calculator) Network(symbol string) string {
	if network, ok := c.networks[symbol]; ok {
		return network
	}
	return "-"
}

// Rank sorts opportunities by descending spread, breaking ties on the
// symbol's canonical ordering, and truncates to limit (0 keeps all).
// Comparison uses the unrounded spread; rounding is for sinks only.
func Rank(opportunities []Opportunity, limit int) []Opportunity {
	ranked := append([]Opportunity(nil), opportunities...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SpreadPct != ranked[j].SpreadPct {
			return ranked[i].SpreadPct > ranked[j].SpreadPct
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// defaultNetworks maps tokens to their transfer network or memo/tag
// requirement. Static display data.
var defaultNetworks = map[string]string{
	"XRP/USDT":   "Memo",
	"XLM/USDT":   "Memo",
	"STEEM/USDT": "Memo",
	"HIVE/USDT":  "Memo",
	"EOS/USDT":   "Tag",
	"ATOM/USDT":  "Memo",
	"BTC/USDT":   "Native",
	"ETH/USDT":   "ERC20",
	"BNB/USDT":   "BEP20",
	"TRX/USDT":   "TRC20",
	"AVAX/USDT":  "AVAX",
	"APT/USDT":   "APTOS",
	"DOGE/USDT":  "Native",
	"LTC/USDT":   "Native",
	"SOL/USDT":   "SOL",
	"MATIC/USDT": "ERC20",
	"OP/USDT":    "ERC20",
	"ARB/USDT":   "ERC20",
}
