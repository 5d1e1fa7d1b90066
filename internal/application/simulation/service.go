package simulation

import (
	"captable-backend/internal/application/captable"

	"github.com/shopspring/decimal"
)

// contributionTolerance is how far the investor contributions may drift from
// the round's investment amount before the request is rejected.
var contributionTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// InvestorInput is one new investor's contribution to the round.
type InvestorInput struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Request describes a proposed financing round to project against a
// cap-table snapshot.
type Request struct {
	PreMoneyValuation    float64         `json:"pre_money_valuation"`
	InvestmentAmount     float64         `json:"investment_amount"`
	IncludeOptionPool    bool            `json:"include_option_pool"`
	OptionPoolPercentage float64         `json:"option_pool_percentage"`
	OptionPoolPreMoney   bool            `json:"option_pool_pre_money"`
	NewInvestors         []InvestorInput `json:"new_investors"`
}

// ExistingHolder is one current shareholder's before/after position.
type ExistingHolder struct {
	ShareholderID      string  `json:"shareholder_id"`
	Name               string  `json:"name"`
	SharesBefore       float64 `json:"shares_before"`
	OwnershipBefore    float64 `json:"ownership_before"`
	OwnershipAfter     float64 `json:"ownership_after"`
	DilutionPercentage float64 `json:"dilution_percentage"`
}

// NewInvestorResult is one new investor's allocation.
type NewInvestorResult struct {
	Name                string  `json:"name"`
	Contribution        float64 `json:"contribution"`
	Shares              float64 `json:"shares"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
}

// Response is the projected outcome of the round. Nothing here is ever
// written back to the ledger.
type Response struct {
	PricePerShare      float64             `json:"price_per_share"`
	PoolShares         float64             `json:"pool_shares"`
	NewInvestorShares  float64             `json:"new_investor_shares"`
	SharesBefore       float64             `json:"shares_before"`
	SharesAfter        float64             `json:"shares_after"`
	PreMoneyValuation  float64             `json:"pre_money_valuation"`
	PostMoneyValuation float64             `json:"post_money_valuation"`
	TotalDilution      float64             `json:"total_dilution"`
	ExistingHolders    []ExistingHolder    `json:"existing_holders"`
	NewInvestors       []NewInvestorResult `json:"new_investors"`
}

// Simulate projects a financing round over the snapshot. Pure function: it
// performs no I/O and the same inputs always produce the same outputs.
//
// Pool sizing follows the round's term sheet convention: a pre-money pool is
// carved out of the existing holders before the round is priced
// (AdjustedPreShares = Sbefore / (1 - p)), a post-money pool is sized after
// pricing so it dilutes new investors too
// (PoolShares = p * (Sbefore + NewInvestorShares) / (1 - p)).
func Simulate(snapshot *captable.Snapshot, req Request) (*Response, error) {
	vPre := decimal.NewFromFloat(req.PreMoneyValuation)
	invest := decimal.NewFromFloat(req.InvestmentAmount)
	sBefore := decimal.NewFromFloat(snapshot.TotalShares)

	if vPre.Sign() <= 0 || invest.Sign() <= 0 || sBefore.Sign() <= 0 {
		return nil, ErrNonPositiveInputs
	}

	p := decimal.NewFromFloat(req.OptionPoolPercentage)
	if req.IncludeOptionPool && (p.Sign() < 0 || p.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		return nil, ErrPoolPercentageRange
	}

	if len(req.NewInvestors) > 0 {
		sum := decimal.Zero
		for _, inv := range req.NewInvestors {
			sum = sum.Add(decimal.NewFromFloat(inv.Amount))
		}
		if sum.Sub(invest).Abs().GreaterThan(contributionTolerance) {
			return nil, ErrContributionSum
		}
	}

	var pricePerShare, poolShares, newInvestorShares, sharesAfter decimal.Decimal
	one := decimal.NewFromInt(1)

	switch {
	case !req.IncludeOptionPool || p.Sign() == 0:
		pricePerShare = vPre.Div(sBefore)
		poolShares = decimal.Zero
		newInvestorShares = invest.Div(pricePerShare)
		sharesAfter = sBefore.Add(newInvestorShares)
	case req.OptionPoolPreMoney:
		// Pool dilutes existing holders before the round is priced.
		adjustedPreShares := sBefore.Div(one.Sub(p))
		poolShares = adjustedPreShares.Sub(sBefore)
		pricePerShare = vPre.Div(adjustedPreShares)
		newInvestorShares = invest.Div(pricePerShare)
		sharesAfter = sBefore.Add(poolShares).Add(newInvestorShares)
	default:
		// Pool dilutes everyone, including the new investors.
		pricePerShare = vPre.Div(sBefore)
		newInvestorShares = invest.Div(pricePerShare)
		poolShares = p.Mul(sBefore.Add(newInvestorShares)).Div(one.Sub(p))
		sharesAfter = sBefore.Add(newInvestorShares).Add(poolShares)
	}

	totalDilution := sharesAfter.Sub(sBefore).Div(sharesAfter).Mul(hundred)

	holders := make([]ExistingHolder, 0, len(snapshot.Positions))
	for _, pos := range snapshot.Positions {
		shares := decimal.NewFromFloat(pos.Shares)
		before := shares.Div(sBefore).Mul(hundred)
		after := shares.Div(sharesAfter).Mul(hundred)
		holders = append(holders, ExistingHolder{
			ShareholderID:      pos.ShareholderID.String(),
			Name:               pos.Name,
			SharesBefore:       pos.Shares,
			OwnershipBefore:    before.InexactFloat64(),
			OwnershipAfter:     after.InexactFloat64(),
			DilutionPercentage: before.Sub(after).InexactFloat64(),
		})
	}

	investors := make([]NewInvestorResult, 0, len(req.NewInvestors))
	for _, inv := range req.NewInvestors {
		amount := decimal.NewFromFloat(inv.Amount)
		shares := newInvestorShares.Mul(amount.Div(invest))
		investors = append(investors, NewInvestorResult{
			Name:                inv.Name,
			Contribution:        inv.Amount,
			Shares:              shares.InexactFloat64(),
			OwnershipPercentage: shares.Div(sharesAfter).Mul(hundred).InexactFloat64(),
		})
	}

	return &Response{
		PricePerShare:      pricePerShare.InexactFloat64(),
		PoolShares:         poolShares.InexactFloat64(),
		NewInvestorShares:  newInvestorShares.InexactFloat64(),
		SharesBefore:       snapshot.TotalShares,
		SharesAfter:        sharesAfter.InexactFloat64(),
		PreMoneyValuation:  req.PreMoneyValuation,
		PostMoneyValuation: vPre.Add(invest).InexactFloat64(),
		TotalDilution:      totalDilution.InexactFloat64(),
		ExistingHolders:    holders,
		NewInvestors:       investors,
	}, nil
}
