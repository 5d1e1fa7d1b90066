package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareClass status values.
const (
	ShareClassActive   = "active"
	ShareClassInactive = "inactive"
)

// Anti-dilution protection kinds.
const (
	AntiDilutionFullRatchet     = "full_ratchet"
	AntiDilutionWeightedAverage = "weighted_average"
)

// ShareClass is the rights template each holding references: voting weight,
// liquidation preference and conversion rules. One row per (company, code);
// classes are deactivated, never deleted.
type ShareClass struct {
	ClassID               uuid.UUID  `gorm:"column:class_id;type:uuid;primaryKey" json:"class_id"`
	CompanyID             uuid.UUID  `gorm:"column:company_id;type:uuid;not null;uniqueIndex:idx_share_classes_company_code" json:"company_id"`
	Code                  string     `gorm:"column:code;type:varchar(20);not null;uniqueIndex:idx_share_classes_company_code" json:"code"`
	Name                  string     `gorm:"column:name;type:varchar(120);not null" json:"name"`
	HasVotingRights       bool       `gorm:"column:has_voting_rights;not null;default:false" json:"has_voting_rights"`
	VotesPerShare         int        `gorm:"column:votes_per_share;not null;default:0" json:"votes_per_share"`
	LiquidationPreference float64    `gorm:"column:liquidation_preference;type:decimal(8,4);not null;default:0" json:"liquidation_preference"`
	Participating         bool       `gorm:"column:participating;not null;default:false" json:"participating"`
	DividendPreference    *float64   `gorm:"column:dividend_preference;type:decimal(8,4)" json:"dividend_preference"`
	IsConvertible         bool       `gorm:"column:is_convertible;not null;default:false" json:"is_convertible"`
	ConvertsToClassID     *uuid.UUID `gorm:"column:converts_to_class_id;type:uuid" json:"converts_to_class_id"`
	ConversionRatio       *float64   `gorm:"column:conversion_ratio;type:decimal(12,6)" json:"conversion_ratio"`
	AntiDilution          *string    `gorm:"column:anti_dilution;type:varchar(30)" json:"anti_dilution"`
	DisplayOrder          int        `gorm:"column:display_order;not null;default:0" json:"display_order"`
	Status                string     `gorm:"column:status;type:varchar(10);not null;default:active" json:"status"`
	CreatedAt             time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt             time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (ShareClass) TableName() string {
	return "ShareClasses"
}

func (sc *ShareClass) BeforeCreate(tx *gorm.DB) error {
	if sc.ClassID == uuid.Nil {
		sc.ClassID = uuid.New()
	}
	return nil
}

// EffectiveVotes returns the votes carried by one share of this class.
func (sc *ShareClass) EffectiveVotes() int {
	if !sc.HasVotingRights {
		return 0
	}
	return sc.VotesPerShare
}

// ConversionFactor returns the ratio of destination-class units per source
// unit, or 1 when the class is not convertible.
func (sc *ShareClass) ConversionFactor() float64 {
	if !sc.IsConvertible || sc.ConversionRatio == nil {
		return 1
	}
	return *sc.ConversionRatio
}
