package model

import "time"

// Exception is a persisted system-level error kept for auditing. The
// close-position dual-write records one of these whenever the sold-trade
// snapshot cannot be written, so the books can be reconciled manually.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Module string `gorm:"size:100;index" json:"module"` // e.g. "position_engine"
	Method string `gorm:"size:100" json:"method"`       // e.g. "ClosePosition"

	Message string `gorm:"type:text" json:"message"`
	Level   string `gorm:"size:20;index" json:"level"` // debug | info | warn | error

	// Extra context stored as JSON text (optional)
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Exception) TableName() string {
	return "exceptions"
}
