package model

import "time"

// Stock is a market snapshot row, populated by the CSV import enriched with
// live quote data. It is reference data only; positions live in Trade.
type Stock struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Symbol        string    `gorm:"size:40;index" json:"symbol"`
	NameOfCompany string    `gorm:"size:200" json:"nameOfCompany"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previousClose"`
	Open          float64   `json:"open"`
	DayHigh       float64   `json:"dayHigh"`
	DayLow        float64   `json:"dayLow"`
	Volume        int64     `json:"volume"`
	Currency      string    `gorm:"size:10" json:"currency"`
	MarketState   string    `gorm:"size:20" json:"marketState"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Stock) TableName() string {
	return "stocks"
}
