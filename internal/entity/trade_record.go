package entity

import "time"

// TradeRecord journals a single executed order.
type TradeRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Symbol     string    `gorm:"not null;index" json:"symbol"`
	Side       string    `gorm:"not null" json:"side"`
	Price      float64   `gorm:"not null" json:"price"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	Reason     string    `gorm:"not null" json:"reason"`
	ExecutedAt time.Time `gorm:"not null" json:"executed_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TradeRecord) TableName() string {
	return "trade_records"
}
