package models

import "time"

type Product struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"nome"`
	Barcode   *string   `gorm:"type:text;index" json:"codigoBarras,omitempty"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null" json:"criadoEm"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null" json:"atualizadoEm"`
}

func (Product) TableName() string {
	return "produtos"
}

// Syncable reports whether external price search can be issued for the
// product: the search term is the GTIN barcode.
func (p Product) Syncable() bool {
	return p.Barcode != nil && *p.Barcode != ""
}
