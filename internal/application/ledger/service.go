package ledger

import (
	"context"
	"time"

	"captable-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the append-only equity ledger. Append is the only mutating
// operation and runs on the caller's transaction handle so the ledger row
// and the holding mutation commit or roll back together. No update or
// delete exists at any layer.
type Service struct {
	DB *gorm.DB
}

// Append validates and inserts a ledger entry using tx (the projector's
// open transaction). Violations fail before anything is written.
func (s *Service) Append(tx *gorm.DB, entry *domain.ShareTransaction) error {
	if entry.Quantity <= 0 {
		return ErrQuantityNotPositive
	}
	if entry.PricePerShare < 0 {
		return ErrPriceNegative
	}
	switch entry.Type {
	case domain.TxIssue, domain.TxTransfer, domain.TxCancel, domain.TxConvert:
	default:
		return ErrUnknownType
	}
	return tx.Create(entry).Error
}

// ListFilter narrows ListByCompany results.
type ListFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}

// ListByCompany returns a company's ledger entries, newest first.
func (s *Service) ListByCompany(ctx context.Context, companyID uuid.UUID, filter ListFilter) ([]domain.ShareTransaction, error) {
	q := s.DB.WithContext(ctx).Where("company_id = ?", companyID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("reference_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("reference_date <= ?", *filter.To)
	}

	var entries []domain.ShareTransaction
	if err := q.Order(`reference_date DESC, "createdAt" DESC`).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByShareholder returns entries where the shareholder appears on either
// side, newest first.
func (s *Service) ListByShareholder(ctx context.Context, companyID, shareholderID uuid.UUID) ([]domain.ShareTransaction, error) {
	var entries []domain.ShareTransaction
	err := s.DB.WithContext(ctx).
		Where("company_id = ? AND (from_shareholder_id = ? OR to_shareholder_id = ?)",
			companyID, shareholderID, shareholderID).
		Order(`reference_date DESC, "createdAt" DESC`).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByID returns a single company-scoped entry.
func (s *Service) GetByID(ctx context.Context, companyID, txID uuid.UUID) (*domain.ShareTransaction, error) {
	var entry domain.ShareTransaction
	err := s.DB.WithContext(ctx).
		Where("company_id = ? AND tx_id = ?", companyID, txID).
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
