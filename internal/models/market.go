package models

import "time"

type Market struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"nome"`
	LegalName *string   `gorm:"type:text;index" json:"razaoSocial,omitempty"`
	Location  *string   `gorm:"type:text" json:"endereco,omitempty"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null" json:"criadoEm"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null" json:"atualizadoEm"`
}

func (Market) TableName() string {
	return "mercados"
}

// Matchable reports whether the market can ever be resolved against an
// external establishment: matching is keyed on the registered legal name.
func (m Market) Matchable() bool {
	return m.LegalName != nil && *m.LegalName != ""
}
