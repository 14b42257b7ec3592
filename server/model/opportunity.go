package model

import "time"

// Opportunity is one persisted row of the opportunity history table.
type Opportunity struct {
	Symbol       string    `json:"symbol"`
	BuyExchange  string    `json:"buy_exchange"`
	BuyPrice     float64   `json:"buy_price"`
	SellExchange string    `json:"sell_exchange"`
	SellPrice    float64   `json:"sell_price"`
	SpreadPct    float64   `json:"spread_pct"`
	Network      string    `json:"network"`
	ObservedAt   time.Time `json:"observed_at"`
	InsertedAt   time.Time `json:"inserted_at"`
}

func (Opportunity) TableName() string {
	return "opportunity"
}
