package service

import (
	"context"
	"errors"

	"arbradar/internal/registry"
	"arbradar/internal/scheduler"
	"arbradar/server/model"
	"arbradar/server/repository"
)

// ErrHistoryDisabled is returned when no history database is configured.
var ErrHistoryDisabled = errors.New("opportunity history is not configured")

// RadarService exposes the engine's read surface: the latest published
// snapshot, the symbol universe, and the persisted history.
type RadarService struct {
	snapshots *scheduler.SnapshotStore
	registry  *registry.Registry
	repo      repository.OpportunityRepository
}

func NewRadarService(
	snapshots *scheduler.SnapshotStore,
	reg *registry.Registry,
	repo repository.OpportunityRepository,
) *RadarService {
	return &RadarService{
		snapshots: snapshots,
		registry:  reg,
		repo:      repo,
	}
}

func (rs *RadarService) Snapshot() scheduler.Snapshot {
	return rs.snapshots.Snapshot()
}

func (rs *RadarService) Subscribe() (<-chan scheduler.Snapshot, func()) {
	return rs.snapshots.Subscribe()
}

func (rs *RadarService) Symbols(ctx context.Context) ([]string, error) {
	return rs.registry.Symbols(ctx)
}

func (rs *RadarService) RefreshSymbols(ctx context.Context) error {
	return rs.registry.Refresh(ctx)
}

func (rs *RadarService) History(symbol string, limit int) ([]model.Opportunity, error) {
	if rs.repo == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if symbol != "" {
		return rs.repo.GetBySymbol(symbol, limit)
	}
	return rs.repo.GetLatest(limit)
}

func (rs *RadarService) HistoryCounts() (map[string]int, error) {
	if rs.repo == nil {
		return nil, ErrHistoryDisabled
	}
	return rs.repo.GetCountBySymbol()
}
