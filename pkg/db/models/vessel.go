package models

import (
	"time"

	"github.com/google/uuid"
)

// Vessel groups equipment under a company's fleet.
type Vessel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Name      string    `gorm:"type:text;not null"`
	Flag      *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
