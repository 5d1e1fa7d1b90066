package equity

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"captable-backend/internal/application/ledger"
	"captable-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheInvalidator drops cached cap-table reads for a company after a
// committed mutation.
type CacheInvalidator interface {
	InvalidateCompany(ctx context.Context, companyID uuid.UUID) error
}

// Service is the holding projector: it translates ledger events into
// holding-state changes and rejects changes that would violate conservation
// of shares. Every operation runs inside one DB transaction that locks the
// affected donor holdings, validates the balance, appends the ledger entry
// and mutates holdings together.
type Service struct {
	DB          *gorm.DB
	Ledger      *ledger.Service
	Invalidator CacheInvalidator // optional
}

// IssueInput describes an Issue event.
type IssueInput struct {
	CompanyID       uuid.UUID
	ShareClassID    uuid.UUID
	ToShareholderID uuid.UUID
	Quantity        float64
	PricePerShare   float64
	ReferenceDate   time.Time
	Metadata        map[string]interface{}
	ActorID         uuid.UUID
}

// TransferInput describes a Transfer event.
type TransferInput struct {
	CompanyID         uuid.UUID
	ShareClassID      uuid.UUID
	FromShareholderID uuid.UUID
	ToShareholderID   uuid.UUID
	Quantity          float64
	PricePerShare     float64
	ReferenceDate     time.Time
	Metadata          map[string]interface{}
	ActorID           uuid.UUID
}

// CancelInput describes a Cancel event.
type CancelInput struct {
	CompanyID         uuid.UUID
	ShareClassID      uuid.UUID
	FromShareholderID uuid.UUID
	Quantity          float64
	Reason            string
	ReferenceDate     time.Time
	ActorID           uuid.UUID
}

// ConvertInput describes a Convert event. The converted holding is credited
// to the same shareholder; convert-and-transfer is two events.
type ConvertInput struct {
	CompanyID        uuid.UUID
	FromShareClassID uuid.UUID
	ToShareClassID   uuid.UUID
	ShareholderID    uuid.UUID
	Quantity         float64
	ReferenceDate    time.Time
	ActorID          uuid.UUID
}

// IssueShares creates a new Active holding for the recipient and appends
// the issue event. Always legal if quantity > 0 and the class is active.
func (s *Service) IssueShares(ctx context.Context, in IssueInput) (*domain.Share, error) {
	if in.Quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}
	if in.PricePerShare < 0 {
		return nil, ErrPriceNegative
	}

	var created *domain.Share
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		class, err := s.activeClass(tx, in.CompanyID, in.ShareClassID)
		if err != nil {
			return err
		}
		if err := s.shareholderExists(tx, in.CompanyID, in.ToShareholderID); err != nil {
			return err
		}

		txID := uuid.New()
		holding := domain.Share{
			CompanyID:           in.CompanyID,
			ShareholderID:       in.ToShareholderID,
			ShareClassID:        class.ClassID,
			Quantity:            in.Quantity,
			AcquisitionPrice:    in.PricePerShare,
			AcquisitionDate:     in.ReferenceDate,
			Status:              domain.ShareActive,
			OriginTransactionID: &txID,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return err
		}

		entry := domain.ShareTransaction{
			TxID:            txID,
			CompanyID:       in.CompanyID,
			Type:            domain.TxIssue,
			ShareClassID:    class.ClassID,
			Quantity:        in.Quantity,
			PricePerShare:   in.PricePerShare,
			ReferenceDate:   in.ReferenceDate,
			ToShareholderID: &in.ToShareholderID,
			ShareID:         &holding.ShareID,
			Metadata:        marshalMetadata(in.Metadata),
			CreatedBy:       in.ActorID,
		}
		if err := s.Ledger.Append(tx, &entry); err != nil {
			return err
		}
		created = &holding
		return nil
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	s.invalidate(ctx, in.CompanyID)
	return created, nil
}

// TransferShares moves quantity from one shareholder to another within a
// class. Donor holdings are locked and consumed oldest-first; the recipient
// gets one new Active holding at the transfer price.
func (s *Service) TransferShares(ctx context.Context, in TransferInput) (*domain.Share, error) {
	if in.Quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}
	if in.PricePerShare < 0 {
		return nil, ErrPriceNegative
	}
	if in.FromShareholderID == in.ToShareholderID {
		return nil, ErrSameShareholder
	}

	var created *domain.Share
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		class, err := s.activeClass(tx, in.CompanyID, in.ShareClassID)
		if err != nil {
			return err
		}
		if err := s.shareholderExists(tx, in.CompanyID, in.ToShareholderID); err != nil {
			return err
		}

		_, err = s.consume(tx, in.CompanyID, in.FromShareholderID, class.ClassID, in.Quantity, domain.ShareTransferred)
		if err != nil {
			return err
		}

		txID := uuid.New()
		holding := domain.Share{
			CompanyID:           in.CompanyID,
			ShareholderID:       in.ToShareholderID,
			ShareClassID:        class.ClassID,
			Quantity:            in.Quantity,
			AcquisitionPrice:    in.PricePerShare,
			AcquisitionDate:     in.ReferenceDate,
			Status:              domain.ShareActive,
			OriginTransactionID: &txID,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return err
		}

		entry := domain.ShareTransaction{
			TxID:              txID,
			CompanyID:         in.CompanyID,
			Type:              domain.TxTransfer,
			ShareClassID:      class.ClassID,
			Quantity:          in.Quantity,
			PricePerShare:     in.PricePerShare,
			ReferenceDate:     in.ReferenceDate,
			FromShareholderID: &in.FromShareholderID,
			ToShareholderID:   &in.ToShareholderID,
			ShareID:           &holding.ShareID,
			Metadata:          marshalMetadata(in.Metadata),
			CreatedBy:         in.ActorID,
		}
		if err := s.Ledger.Append(tx, &entry); err != nil {
			return err
		}
		created = &holding
		return nil
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	s.invalidate(ctx, in.CompanyID)
	return created, nil
}

// CancelShares retires quantity from a shareholder's balance. No recipient
// holding is created; the company's outstanding shares decrease.
func (s *Service) CancelShares(ctx context.Context, in CancelInput) error {
	if in.Quantity <= 0 {
		return ErrQuantityNotPositive
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		class, err := s.activeClass(tx, in.CompanyID, in.ShareClassID)
		if err != nil {
			return err
		}

		_, err = s.consume(tx, in.CompanyID, in.FromShareholderID, class.ClassID, in.Quantity, domain.ShareCancelled)
		if err != nil {
			return err
		}

		meta := map[string]interface{}{}
		if in.Reason != "" {
			meta["reason"] = in.Reason
		}
		entry := domain.ShareTransaction{
			CompanyID:         in.CompanyID,
			Type:              domain.TxCancel,
			ShareClassID:      class.ClassID,
			Quantity:          in.Quantity,
			ReferenceDate:     in.ReferenceDate,
			FromShareholderID: &in.FromShareholderID,
			Metadata:          marshalMetadata(meta),
			CreatedBy:         in.ActorID,
		}
		return s.Ledger.Append(tx, &entry)
	})
	if err != nil {
		return translateConflict(err)
	}
	s.invalidate(ctx, in.CompanyID)
	return nil
}

// ConvertShares terminates source-class holdings and creates one Active
// holding in the target class, scaled by the conversion ratio configured on
// the source class. The acquisition price is the consumed quantity's
// weighted average price divided by the ratio, so the position's value
// carries over.
func (s *Service) ConvertShares(ctx context.Context, in ConvertInput) (*domain.Share, error) {
	if in.Quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}
	if in.FromShareClassID == in.ToShareClassID {
		return nil, ErrSameClass
	}

	var created *domain.Share
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := s.activeClass(tx, in.CompanyID, in.FromShareClassID)
		if err != nil {
			return err
		}
		if !source.IsConvertible || source.ConvertsToClassID == nil ||
			*source.ConvertsToClassID != in.ToShareClassID ||
			source.ConversionRatio == nil || *source.ConversionRatio <= 0 {
			return ErrNotConvertible
		}
		target, err := s.activeClass(tx, in.CompanyID, in.ToShareClassID)
		if err != nil {
			return err
		}

		consumed, err := s.consume(tx, in.CompanyID, in.ShareholderID, source.ClassID, in.Quantity, domain.ShareConverted)
		if err != nil {
			return err
		}

		ratio := *source.ConversionRatio
		newQuantity := in.Quantity * ratio
		avgPrice := consumed.weightedPrice(in.Quantity)

		txID := uuid.New()
		holding := domain.Share{
			CompanyID:           in.CompanyID,
			ShareholderID:       in.ShareholderID,
			ShareClassID:        target.ClassID,
			Quantity:            newQuantity,
			AcquisitionPrice:    avgPrice / ratio,
			AcquisitionDate:     in.ReferenceDate,
			Status:              domain.ShareActive,
			OriginTransactionID: &txID,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return err
		}

		entry := domain.ShareTransaction{
			TxID:              txID,
			CompanyID:         in.CompanyID,
			Type:              domain.TxConvert,
			ShareClassID:      source.ClassID,
			ToShareClassID:    &target.ClassID,
			Quantity:          in.Quantity,
			ReferenceDate:     in.ReferenceDate,
			FromShareholderID: &in.ShareholderID,
			ToShareholderID:   &in.ShareholderID,
			ShareID:           &holding.ShareID,
			CreatedBy:         in.ActorID,
		}
		if err := s.Ledger.Append(tx, &entry); err != nil {
			return err
		}
		created = &holding
		return nil
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	s.invalidate(ctx, in.CompanyID)
	return created, nil
}

// consumption records which donor holdings a mutation drew from.
type consumption struct {
	parts []consumedPart
}

type consumedPart struct {
	quantity float64
	price    float64
}

func (c consumption) weightedPrice(total float64) float64 {
	if total <= 0 {
		return 0
	}
	var sum float64
	for _, p := range c.parts {
		sum += p.quantity * p.price
	}
	return sum / total
}

// consume locks the donor's Active holdings in the class and draws quantity
// from them oldest-first. Fully drained holdings get the terminal status
// (their quantity is kept as the historical record); a partially drained
// holding has its quantity reduced in place and stays Active.
func (s *Service) consume(tx *gorm.DB, companyID, shareholderID, classID uuid.UUID, quantity float64, terminalStatus string) (consumption, error) {
	var donors []domain.Share
	q := tx.Where(
		"company_id = ? AND shareholder_id = ? AND share_class_id = ? AND status = ?",
		companyID, shareholderID, classID, domain.ShareActive,
	).Order(`acquisition_date ASC, "createdAt" ASC`)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Find(&donors).Error; err != nil {
		return consumption{}, err
	}

	var available float64
	for _, d := range donors {
		available += d.Quantity
	}
	if available < quantity {
		return consumption{}, ErrInsufficientBalance
	}

	var result consumption
	remaining := quantity
	for i := range donors {
		if remaining <= 0 {
			break
		}
		d := &donors[i]
		if remaining >= d.Quantity {
			if err := tx.Model(d).Update("status", terminalStatus).Error; err != nil {
				return consumption{}, err
			}
			result.parts = append(result.parts, consumedPart{quantity: d.Quantity, price: d.AcquisitionPrice})
			remaining -= d.Quantity
		} else {
			if err := tx.Model(d).Update("quantity", d.Quantity-remaining).Error; err != nil {
				return consumption{}, err
			}
			result.parts = append(result.parts, consumedPart{quantity: remaining, price: d.AcquisitionPrice})
			remaining = 0
		}
	}
	return result, nil
}

func (s *Service) activeClass(tx *gorm.DB, companyID, classID uuid.UUID) (*domain.ShareClass, error) {
	var class domain.ShareClass
	err := tx.Where("company_id = ? AND class_id = ?", companyID, classID).First(&class).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrShareClassNotFound
	}
	if err != nil {
		return nil, err
	}
	if class.Status != domain.ShareClassActive {
		return nil, ErrShareClassInactive
	}
	return &class, nil
}

func (s *Service) shareholderExists(tx *gorm.DB, companyID, shareholderID uuid.UUID) error {
	var count int64
	err := tx.Model(&domain.Shareholder{}).
		Where("company_id = ? AND shareholder_id = ?", companyID, shareholderID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrShareholderNotFound
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, companyID uuid.UUID) {
	if s.Invalidator != nil {
		_ = s.Invalidator.InvalidateCompany(ctx, companyID)
	}
}

func marshalMetadata(m map[string]interface{}) datatypes.JSON {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// translateConflict maps Postgres serialization/deadlock failures to the
// retryable conflict error; everything else passes through.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "could not serialize") || strings.Contains(msg, "deadlock detected") {
		return ErrConcurrencyConflict
	}
	return err
}
