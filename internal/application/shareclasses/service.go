package shareclasses

import (
	"context"

	"captable-backend/internal/domain"
	"captable-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates the share-class registry. Classes hold the rights
// template holdings reference; they are created once, edited through Update
// and deactivated rather than deleted.
type Service struct {
	DB *gorm.DB
}

// CreateInput carries the fields for a new share class.
type CreateInput struct {
	CompanyID             uuid.UUID
	Code                  string
	Name                  string
	HasVotingRights       bool
	VotesPerShare         int
	LiquidationPreference float64
	Participating         bool
	DividendPreference    *float64
	IsConvertible         bool
	ConvertsToClassID     *uuid.UUID
	ConversionRatio       *float64
	AntiDilution          *string
	DisplayOrder          int
}

// UpdateInput carries the editable fields; nil pointers leave the field as is.
type UpdateInput struct {
	Name                  *string
	HasVotingRights       *bool
	VotesPerShare         *int
	LiquidationPreference *float64
	Participating         *bool
	DividendPreference    *float64
	IsConvertible         *bool
	ConvertsToClassID     *uuid.UUID
	ConversionRatio       *float64
	AntiDilution          *string
	DisplayOrder          *int
}

// Create validates and registers a new class for the company.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ShareClass, error) {
	if !validation.IsValidClassCode(in.Code) {
		return nil, ErrCodeRequired
	}
	if in.Name == "" {
		return nil, ErrNameRequired
	}

	sc := domain.ShareClass{
		CompanyID:             in.CompanyID,
		Code:                  in.Code,
		Name:                  in.Name,
		HasVotingRights:       in.HasVotingRights,
		VotesPerShare:         in.VotesPerShare,
		LiquidationPreference: in.LiquidationPreference,
		Participating:         in.Participating,
		DividendPreference:    in.DividendPreference,
		IsConvertible:         in.IsConvertible,
		ConvertsToClassID:     in.ConvertsToClassID,
		ConversionRatio:       in.ConversionRatio,
		AntiDilution:          in.AntiDilution,
		DisplayOrder:          in.DisplayOrder,
		Status:                domain.ShareClassActive,
	}
	if err := validateRights(&sc); err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.ShareClass{}).
		Where("company_id = ? AND code = ?", in.CompanyID, in.Code).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCodeTaken
	}

	if err := s.DB.WithContext(ctx).Create(&sc).Error; err != nil {
		return nil, err
	}
	return &sc, nil
}

// Update edits a class in place; the code is immutable. The rights
// invariants are re-validated on the merged result before saving.
func (s *Service) Update(ctx context.Context, companyID, classID uuid.UUID, in UpdateInput) (*domain.ShareClass, error) {
	sc, err := s.GetByID(ctx, companyID, classID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, ErrNameRequired
		}
		sc.Name = *in.Name
	}
	if in.HasVotingRights != nil {
		sc.HasVotingRights = *in.HasVotingRights
	}
	if in.VotesPerShare != nil {
		sc.VotesPerShare = *in.VotesPerShare
	}
	if in.LiquidationPreference != nil {
		sc.LiquidationPreference = *in.LiquidationPreference
	}
	if in.Participating != nil {
		sc.Participating = *in.Participating
	}
	if in.DividendPreference != nil {
		sc.DividendPreference = in.DividendPreference
	}
	if in.IsConvertible != nil {
		sc.IsConvertible = *in.IsConvertible
	}
	if in.ConvertsToClassID != nil {
		sc.ConvertsToClassID = in.ConvertsToClassID
	}
	if in.ConversionRatio != nil {
		sc.ConversionRatio = in.ConversionRatio
	}
	if in.AntiDilution != nil {
		sc.AntiDilution = in.AntiDilution
	}
	if in.DisplayOrder != nil {
		sc.DisplayOrder = *in.DisplayOrder
	}

	if err := validateRights(sc); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(sc).Error; err != nil {
		return nil, err
	}
	return sc, nil
}

// Deactivate marks the class inactive. Existing holdings keep referencing
// it; new issues against it are rejected by the projector.
func (s *Service) Deactivate(ctx context.Context, companyID, classID uuid.UUID) (*domain.ShareClass, error) {
	sc, err := s.GetByID(ctx, companyID, classID)
	if err != nil {
		return nil, err
	}
	sc.Status = domain.ShareClassInactive
	if err := s.DB.WithContext(ctx).Save(sc).Error; err != nil {
		return nil, err
	}
	return sc, nil
}

// GetByID returns a company's class by id.
func (s *Service) GetByID(ctx context.Context, companyID, classID uuid.UUID) (*domain.ShareClass, error) {
	var sc domain.ShareClass
	err := s.DB.WithContext(ctx).
		Where("company_id = ? AND class_id = ?", companyID, classID).
		First(&sc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListByCompany returns all classes of a company in display order.
func (s *Service) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.ShareClass, error) {
	var classes []domain.ShareClass
	err := s.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("display_order ASC, code ASC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

// validateRights enforces the class invariants:
// convertible => ratio > 0 and target set (and not self);
// no voting rights => zero votes per share.
func validateRights(sc *domain.ShareClass) error {
	if !sc.HasVotingRights && sc.VotesPerShare != 0 {
		return ErrVotesWithoutRights
	}
	if sc.LiquidationPreference < 0 {
		return ErrNegativePreference
	}
	if sc.IsConvertible {
		if sc.ConvertsToClassID == nil || sc.ConversionRatio == nil || *sc.ConversionRatio <= 0 {
			return ErrConversionIncomplete
		}
		if *sc.ConvertsToClassID == sc.ClassID && sc.ClassID != uuid.Nil {
			return ErrConversionSelf
		}
	}
	if sc.AntiDilution != nil {
		switch *sc.AntiDilution {
		case domain.AntiDilutionFullRatchet, domain.AntiDilutionWeightedAverage:
		default:
			return ErrUnknownAntiDilution
		}
	}
	return nil
}
