package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ImageList stores explainer image URLs as a JSON-encoded column so the
// same model works on both postgres and sqlite.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for ImageList: %T", value)
	}
}

// Explainer is a free-text note attached to a trade, optionally carrying
// uploaded chart images.
type Explainer struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	TradeID uint      `gorm:"index;not null" json:"tradeId"`
	Title   string    `gorm:"size:200;not null" json:"title"`
	Content string    `gorm:"type:text;not null" json:"content"`
	Images  ImageList `gorm:"type:text" json:"images"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Belongs to Trade; preloaded for listing so the UI can show buy/sell
	// context next to the note.
	Trade *Trade `gorm:"foreignKey:TradeID;constraint:OnDelete:CASCADE" json:"trade,omitempty"`
}

func (Explainer) TableName() string {
	return "explainers"
}
