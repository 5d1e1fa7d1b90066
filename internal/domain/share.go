package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Share (holding) status values. Transitions are one-directional: a holding
// starts Active and ends in exactly one terminal state.
const (
	ShareActive      = "active"
	ShareCancelled   = "cancelled"
	ShareTransferred = "transferred"
	ShareConverted   = "converted"
)

// Share is the current-holdings projection derived from the ledger. Only the
// equity projector mutates these rows: partial consumption reduces Quantity
// in place, full consumption sets the terminal status. No API edits a
// holding directly.
type Share struct {
	ShareID             uuid.UUID  `gorm:"column:share_id;type:uuid;primaryKey" json:"share_id"`
	CompanyID           uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index:idx_shares_balance" json:"company_id"`
	ShareholderID       uuid.UUID  `gorm:"column:shareholder_id;type:uuid;not null;index:idx_shares_balance" json:"shareholder_id"`
	ShareClassID        uuid.UUID  `gorm:"column:share_class_id;type:uuid;not null;index:idx_shares_balance" json:"share_class_id"`
	Quantity            float64    `gorm:"column:quantity;type:decimal(18,2);not null" json:"quantity"`
	AcquisitionPrice    float64    `gorm:"column:acquisition_price;type:decimal(18,6);not null;default:0" json:"acquisition_price"`
	AcquisitionDate     time.Time  `gorm:"column:acquisition_date;not null" json:"acquisition_date"`
	Status              string     `gorm:"column:status;type:varchar(12);not null;default:active" json:"status"`
	OriginTransactionID *uuid.UUID `gorm:"column:origin_transaction_id;type:uuid" json:"origin_transaction_id"`
	CreatedAt           time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Share) TableName() string {
	return "Shares"
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ShareID == uuid.Nil {
		s.ShareID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the holding has left the Active state.
func (s *Share) IsTerminal() bool {
	return s.Status != ShareActive
}
