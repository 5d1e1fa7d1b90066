package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shareholder types used for cap-table grouping.
const (
	HolderFounder  = "founder"
	HolderInvestor = "investor"
	HolderEmployee = "employee"
	HolderAdvisor  = "advisor"
	HolderOther    = "other"
)

// Shareholder is the directory read model. The equity engine only reads it
// to label cap-table entries; creation and validation of shareholders
// happens upstream.
type Shareholder struct {
	ShareholderID uuid.UUID `gorm:"column:shareholder_id;type:uuid;primaryKey" json:"shareholder_id"`
	CompanyID     uuid.UUID `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	Name          string    `gorm:"column:name;type:varchar(160);not null" json:"name"`
	Type          string    `gorm:"column:type;type:varchar(20);not null;default:other" json:"type"`
	CreatedAt     time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Shareholder) TableName() string {
	return "Shareholders"
}

func (s *Shareholder) BeforeCreate(tx *gorm.DB) error {
	if s.ShareholderID == uuid.Nil {
		s.ShareholderID = uuid.New()
	}
	return nil
}
