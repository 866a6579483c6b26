package model

import "time"

// SoldTrade is the immutable record of a single sell event. The buy-side
// fields are copied from the originating trade at sell time so the record
// stays correct even if that trade is later sold further or deleted.
// Quantity is the quantity sold in this event, not the remaining quantity.
type SoldTrade struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	StockName string     `gorm:"size:120;index" json:"stockName"`
	BuyDate   *time.Time `json:"buyDate"`
	BuyPrice  float64    `json:"buyPrice"`
	SellDate  *time.Time `json:"sellDate"`
	SellPrice float64    `json:"sellPrice"`
	Quantity  float64    `gorm:"not null" json:"quantity"`
	StopLoss  float64    `json:"stopLoss"`
	ExitType  string     `gorm:"size:20" json:"exitType"`

	// Back-reference to the trade this sell was applied against. Kept for
	// display and cross-linking only; reporting reads the embedded buy
	// snapshot above.
	OriginalTradeID uint `gorm:"index;not null" json:"originalTradeId"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName allows you to control the exact table name for sold trades.
func (SoldTrade) TableName() string {
	return "sold_trades"
}
