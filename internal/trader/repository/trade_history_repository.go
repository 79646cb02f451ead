package repository

import (
	"context"

	"golang-crypto-trader/internal/entity"

	"gorm.io/gorm"
)

// TradeHistoryRepository journals executed orders.
type TradeHistoryRepository interface {
	Create(ctx context.Context, record *entity.TradeRecord) error
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.TradeRecord, error)
}

type tradeHistoryRepository struct {
	db *gorm.DB
}

// NewTradeHistoryRepository creates a gorm-backed trade journal and ensures
// its table exists.
func NewTradeHistoryRepository(db *gorm.DB) (TradeHistoryRepository, error) {
	if err := db.AutoMigrate(&entity.TradeRecord{}); err != nil {
		return nil, err
	}
	return &tradeHistoryRepository{db: db}, nil
}

func (r *tradeHistoryRepository) Create(ctx context.Context, record *entity.TradeRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *tradeHistoryRepository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.TradeRecord, error) {
	var records []entity.TradeRecord
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("executed_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
