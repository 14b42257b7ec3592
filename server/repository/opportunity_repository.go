package repository

import (
	"arbradar/server/model"

	"gorm.io/gorm"
)

type OpportunityRepository interface {
	GetLatest(limit int) ([]model.Opportunity, error)
	GetBySymbol(symbol string, limit int) ([]model.Opportunity, error)
	GetCountBySymbol() (map[string]int, error)
}

type gormOpportunityRepository struct {
	db *gorm.DB
}

func NewGormOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &gormOpportunityRepository{db: db}
}

func (gor *gormOpportunityRepository) GetLatest(limit int) ([]model.Opportunity, error) {
	var opps []model.Opportunity
	err := gor.db.Order("inserted_at desc").Limit(limit).Find(&opps).Error
	if err != nil {
		return nil, err
	}
	return opps, nil
}

func (gor *gormOpportunityRepository) GetBySymbol(symbol string, limit int) ([]model.Opportunity, error) {
	var opps []model.Opportunity
	err := gor.db.Where("symbol = ?", symbol).
		Order("observed_at desc").
		Limit(limit).
		Find(&opps).Error
	if err != nil {
		return nil, err
	}
	return opps, nil
}

func (gor *gormOpportunityRepository) GetCountBySymbol() (map[string]int, error) {
	type symbolCount struct {
		Symbol string
		Count  int
	}
	var rows []symbolCount
	err := gor.db.Model(&model.Opportunity{}).
		Select("symbol, count(*) as count").
		Group("symbol").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int, len(rows))
	for _, row := range rows {
		result[row.Symbol] = row.Count
	}
	return result, nil
}
