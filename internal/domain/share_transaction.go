package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger transaction types.
const (
	TxIssue    = "issue"
	TxTransfer = "transfer"
	TxCancel   = "cancel"
	TxConvert  = "convert"
)

// ShareTransaction is an append-only ledger entry. Rows are created inside
// the same DB transaction as the holding mutation they describe and are
// never updated or deleted afterwards; the ledger is the audit trail the
// holdings projection is derived from.
type ShareTransaction struct {
	TxID              uuid.UUID      `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	CompanyID         uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	Type              string         `gorm:"column:type;type:varchar(10);not null" json:"type"`
	ShareClassID      uuid.UUID      `gorm:"column:share_class_id;type:uuid;not null" json:"share_class_id"`
	ToShareClassID    *uuid.UUID     `gorm:"column:to_share_class_id;type:uuid" json:"to_share_class_id"`
	Quantity          float64        `gorm:"column:quantity;type:decimal(18,2);not null" json:"quantity"`
	PricePerShare     float64        `gorm:"column:price_per_share;type:decimal(18,6);not null;default:0" json:"price_per_share"`
	ReferenceDate     time.Time      `gorm:"column:reference_date;not null" json:"reference_date"`
	FromShareholderID *uuid.UUID     `gorm:"column:from_shareholder_id;type:uuid" json:"from_shareholder_id"`
	ToShareholderID   *uuid.UUID     `gorm:"column:to_shareholder_id;type:uuid" json:"to_shareholder_id"`
	ShareID           *uuid.UUID     `gorm:"column:share_id;type:uuid" json:"share_id"`
	Metadata          datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedBy         uuid.UUID      `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt         time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (ShareTransaction) TableName() string {
	return "ShareTransactions"
}

func (t *ShareTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
