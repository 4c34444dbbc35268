package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PriceRecord is one observed retail price for a product at a market.
// Records are append-only: the sync pipeline creates them and nothing
// updates or deletes them afterwards.
type PriceRecord struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  uint64          `gorm:"not null;index:idx_precos_pair,priority:1" json:"produtoId"`
	MarketID   uint64          `gorm:"not null;index:idx_precos_pair,priority:2" json:"mercadoId"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"preco"`
	RecordDate time.Time       `gorm:"type:timestamptz;not null;index:idx_precos_pair,priority:3" json:"dataRegistro"`
	Notes      string          `gorm:"type:text" json:"observacao"`
	RawJSON    datatypes.JSON  `gorm:"type:jsonb" json:"-"`
	CreatedAt  time.Time       `gorm:"type:timestamptz;not null" json:"criadoEm"`
}

func (PriceRecord) TableName() string {
	return "precos"
}
