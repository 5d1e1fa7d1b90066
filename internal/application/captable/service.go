package captable

import (
	"context"
	"sort"
	"time"

	"captable-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry is one computed cap-table row per (shareholder, share class).
// Entries are derived from Active holdings at read time and never persisted.
type Entry struct {
	ShareholderID          uuid.UUID `json:"shareholder_id"`
	ShareholderName        string    `json:"shareholder_name"`
	HolderType             string    `json:"holder_type"`
	ShareClassID           uuid.UUID `json:"share_class_id"`
	ClassCode              string    `json:"class_code"`
	ClassName              string    `json:"class_name"`
	TotalShares            float64   `json:"total_shares"`
	TotalValue             float64   `json:"total_value"`
	OwnershipPercentage    float64   `json:"ownership_percentage"`
	VotingPercentage       float64   `json:"voting_percentage"`
	FullyDilutedPercentage float64   `json:"fully_diluted_percentage"`
}

// HolderTypeSummary groups entries by shareholder type.
type HolderTypeSummary struct {
	HolderType          string  `json:"holder_type"`
	TotalShares         float64 `json:"total_shares"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
}

// ClassSummary groups entries by share class.
type ClassSummary struct {
	ShareClassID        uuid.UUID `json:"share_class_id"`
	ClassCode           string    `json:"class_code"`
	ClassName           string    `json:"class_name"`
	TotalShares         float64   `json:"total_shares"`
	OwnershipPercentage float64   `json:"ownership_percentage"`
}

// Response is the full cap-table view for a company as of a date.
type Response struct {
	CompanyID         uuid.UUID           `json:"company_id"`
	AsOf              time.Time           `json:"as_of"`
	Entries           []Entry             `json:"entries"`
	ByHolderType      []HolderTypeSummary `json:"by_holder_type"`
	ByClass           []ClassSummary      `json:"by_class"`
	TotalShares       float64             `json:"total_shares"`
	TotalValue        float64             `json:"total_value"`
	TotalVotingShares float64             `json:"total_voting_shares"`
}

// HolderPosition is one shareholder's fully-diluted position, the simulator's
// input unit.
type HolderPosition struct {
	ShareholderID uuid.UUID `json:"shareholder_id"`
	Name          string    `json:"name"`
	Shares        float64   `json:"shares"`
}

// Snapshot is the aggregate the round simulator consumes.
type Snapshot struct {
	CompanyID   uuid.UUID        `json:"company_id"`
	Positions   []HolderPosition `json:"positions"`
	TotalShares float64          `json:"total_shares"`
}

// Service aggregates Active holdings into ownership, voting and
// fully-diluted percentages. It performs no writes and is safe to call
// concurrently with mutations; the projector's transactional boundary
// guarantees readers see whole mutations only.
type Service struct {
	DB *gorm.DB
}

type entryKey struct {
	shareholder uuid.UUID
	class       uuid.UUID
}

type entryAcc struct {
	shares float64
	value  float64
	votes  float64
	fd     float64
}

// GetCapTable computes the cap table for a company as of a date.
func (s *Service) GetCapTable(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*Response, error) {
	shares, classes, holders, err := s.load(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}

	accs := map[entryKey]*entryAcc{}
	var totalShares, totalValue, totalVotes, totalFD float64
	for _, sh := range shares {
		class := classes[sh.ShareClassID]
		if class == nil {
			continue
		}
		k := entryKey{shareholder: sh.ShareholderID, class: sh.ShareClassID}
		acc := accs[k]
		if acc == nil {
			acc = &entryAcc{}
			accs[k] = acc
		}
		votes := sh.Quantity * float64(class.EffectiveVotes())
		fd := sh.Quantity
		if class.IsConvertible {
			fd = sh.Quantity * class.ConversionFactor()
		}
		value := sh.Quantity * sh.AcquisitionPrice

		acc.shares += sh.Quantity
		acc.value += value
		acc.votes += votes
		acc.fd += fd
		totalShares += sh.Quantity
		totalValue += value
		totalVotes += votes
		totalFD += fd
	}

	entries := make([]Entry, 0, len(accs))
	for k, acc := range accs {
		class := classes[k.class]
		e := Entry{
			ShareholderID:          k.shareholder,
			ShareClassID:           k.class,
			ClassCode:              class.Code,
			ClassName:              class.Name,
			TotalShares:            acc.shares,
			TotalValue:             acc.value,
			OwnershipPercentage:    percentage(acc.shares, totalShares),
			VotingPercentage:       percentage(acc.votes, totalVotes),
			FullyDilutedPercentage: percentage(acc.fd, totalFD),
		}
		if h, ok := holders[k.shareholder]; ok {
			e.ShareholderName = h.Name
			e.HolderType = h.Type
		} else {
			e.HolderType = domain.HolderOther
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		ci, cj := classes[entries[i].ShareClassID], classes[entries[j].ShareClassID]
		if ci.DisplayOrder != cj.DisplayOrder {
			return ci.DisplayOrder < cj.DisplayOrder
		}
		if entries[i].ClassCode != entries[j].ClassCode {
			return entries[i].ClassCode < entries[j].ClassCode
		}
		return entries[i].TotalShares > entries[j].TotalShares
	})

	return &Response{
		CompanyID:         companyID,
		AsOf:              asOf,
		Entries:           entries,
		ByHolderType:      summarizeByHolderType(entries, totalShares),
		ByClass:           summarizeByClass(entries, totalShares),
		TotalShares:       totalShares,
		TotalValue:        totalValue,
		TotalVotingShares: totalVotes,
	}, nil
}

// GetSnapshot returns the fully-diluted positions per shareholder, the
// simulator's SharesBefore base.
func (s *Service) GetSnapshot(ctx context.Context, companyID uuid.UUID) (*Snapshot, error) {
	shares, classes, holders, err := s.load(ctx, companyID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	byHolder := map[uuid.UUID]float64{}
	var total float64
	for _, sh := range shares {
		class := classes[sh.ShareClassID]
		if class == nil {
			continue
		}
		fd := sh.Quantity
		if class.IsConvertible {
			fd = sh.Quantity * class.ConversionFactor()
		}
		byHolder[sh.ShareholderID] += fd
		total += fd
	}

	positions := make([]HolderPosition, 0, len(byHolder))
	for id, qty := range byHolder {
		p := HolderPosition{ShareholderID: id, Shares: qty}
		if h, ok := holders[id]; ok {
			p.Name = h.Name
		}
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Shares != positions[j].Shares {
			return positions[i].Shares > positions[j].Shares
		}
		return positions[i].ShareholderID.String() < positions[j].ShareholderID.String()
	})

	return &Snapshot{CompanyID: companyID, Positions: positions, TotalShares: total}, nil
}

func (s *Service) load(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]domain.Share, map[uuid.UUID]*domain.ShareClass, map[uuid.UUID]*domain.Shareholder, error) {
	var shares []domain.Share
	err := s.DB.WithContext(ctx).
		Where("company_id = ? AND status = ? AND acquisition_date <= ?",
			companyID, domain.ShareActive, asOf).
		Find(&shares).Error
	if err != nil {
		return nil, nil, nil, err
	}

	var classList []domain.ShareClass
	if err := s.DB.WithContext(ctx).Where("company_id = ?", companyID).Find(&classList).Error; err != nil {
		return nil, nil, nil, err
	}
	classes := make(map[uuid.UUID]*domain.ShareClass, len(classList))
	for i := range classList {
		classes[classList[i].ClassID] = &classList[i]
	}

	var holderList []domain.Shareholder
	if err := s.DB.WithContext(ctx).Where("company_id = ?", companyID).Find(&holderList).Error; err != nil {
		return nil, nil, nil, err
	}
	holders := make(map[uuid.UUID]*domain.Shareholder, len(holderList))
	for i := range holderList {
		holders[holderList[i].ShareholderID] = &holderList[i]
	}

	return shares, classes, holders, nil
}

func summarizeByHolderType(entries []Entry, totalShares float64) []HolderTypeSummary {
	byType := map[string]float64{}
	for _, e := range entries {
		byType[e.HolderType] += e.TotalShares
	}
	out := make([]HolderTypeSummary, 0, len(byType))
	for t, qty := range byType {
		out = append(out, HolderTypeSummary{
			HolderType:          t,
			TotalShares:         qty,
			OwnershipPercentage: percentage(qty, totalShares),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalShares > out[j].TotalShares })
	return out
}

func summarizeByClass(entries []Entry, totalShares float64) []ClassSummary {
	type agg struct {
		code, name string
		shares     float64
	}
	byClass := map[uuid.UUID]*agg{}
	order := []uuid.UUID{}
	for _, e := range entries {
		a := byClass[e.ShareClassID]
		if a == nil {
			a = &agg{code: e.ClassCode, name: e.ClassName}
			byClass[e.ShareClassID] = a
			order = append(order, e.ShareClassID)
		}
		a.shares += e.TotalShares
	}
	out := make([]ClassSummary, 0, len(order))
	for _, id := range order {
		a := byClass[id]
		out = append(out, ClassSummary{
			ShareClassID:        id,
			ClassCode:           a.code,
			ClassName:           a.name,
			TotalShares:         a.shares,
			OwnershipPercentage: percentage(a.shares, totalShares),
		})
	}
	return out
}

// percentage computes part/whole*100 on decimals so chained divisions keep
// the closure invariant within 1e-6.
func percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromFloat(part).
		Div(decimal.NewFromFloat(whole)).
		Mul(decimal.NewFromInt(100)).
		InexactFloat64()
}
