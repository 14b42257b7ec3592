// Package storage persists published opportunity tables to ClickHouse for
// history queries. Write failures are the caller's to log; they must never
// abort an aggregation cycle.
package storage

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"arbradar/internal/spread"
)

// OpportunityStorage persists opportunity rows.
// Implementations must be safe for concurrent use.
type OpportunityStorage interface {
	// CreateOpportunities inserts a batch of opportunities.
	CreateOpportunities(ctx context.Context, opps []spread.Opportunity) error

	// Close releases database connection resources.
	Close() error
}

// clickhouseStorage implements OpportunityStorage using the native
// ClickHouse driver. Uses batch inserts; one batch per published table.
type clickhouseStorage struct {
	conn driver.Conn
}

// NewClickHouseStorage creates a new ClickHouse storage connection.
// It parses the DSN, opens a connection, and verifies connectivity with a
// ping. Returns an error if connection cannot be established within 5 seconds.
func NewClickHouseStorage(dsn string) (OpportunityStorage, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	return &clickhouseStorage{conn: conn}, nil
}

// CreateOpportunities inserts opportunities using ClickHouse batch insert.
// All rows in the batch share the same inserted_at timestamp.
func (s *clickhouseStorage) CreateOpportunities(ctx context.Context, opps []spread.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO opportunity (
			symbol, buy_exchange, buy_price,
			sell_exchange, sell_price, spread_pct,
			network, observed_at, inserted_at
		)
	`)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, opp := range opps {
		err := batch.Append(
			opp.Symbol,
			opp.BuyExchange,
			opp.BuyPrice,
			opp.SellExchange,
			opp.SellPrice,
			opp.SpreadPct,
			opp.Network,
			opp.ObservedAt,
			now,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

func (s *clickhouseStorage) Close() error {
	return s.conn.Close()
}
