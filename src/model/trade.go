package model

import "time"

const (
	ExitPartial = "Partial Exit"
	ExitFull    = "Full Exit"
)

// Trade is an open (or partially closed) position. BuyDate and BuyPrice are
// immutable after creation; Quantity is the remaining quantity and only ever
// decreases. SellDate/SellPrice/StopLoss hold the values of the most recent
// sell applied against this trade. The full sell history lives in SoldTrade.
type Trade struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	StockName string     `gorm:"size:120;index" json:"stockName"`
	BuyDate   *time.Time `json:"buyDate"`
	BuyPrice  float64    `json:"buyPrice"`
	SellDate  *time.Time `json:"sellDate,omitempty"`
	SellPrice *float64   `json:"sellPrice,omitempty"`
	Quantity  float64    `gorm:"not null;default:0" json:"quantity"`
	StopLoss  float64    `json:"stopLoss"`
	ExitType  string     `gorm:"size:20" json:"exitType,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName allows you to control the exact table name for trades.
func (Trade) TableName() string {
	return "trades"
}

// Open reports whether the trade still holds quantity that can be sold.
func (t *Trade) Open() bool {
	return t.BuyDate != nil && t.Quantity > 0
}
