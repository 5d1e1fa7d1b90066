package captable

import (
	captablesvc "captable-backend/internal/application/captable"
	"captable-backend/internal/application/simulation"
	"captable-backend/internal/middleware"
	"captable-backend/internal/pkg/response"
	"captable-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *captablesvc.Service
	Cached  *captablesvc.CachedService // optional; falls back to Service when nil
}

var simulationStatusMap = map[string]int{
	simulation.ErrNonPositiveInputs.Error():   400,
	simulation.ErrPoolPercentageRange.Error(): 400,
	simulation.ErrContributionSum.Error():     400,
}

// ViewCapTable GET /api/v1/captable/view-captable?as_of=YYYY-MM-DD
func (h *Handlers) ViewCapTable(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	asOf, ok := validation.ParseReferenceDate(c.Query("as_of"))
	if !ok {
		return response.Error(c, "Invalid as_of date, expected YYYY-MM-DD", 400, nil)
	}

	var (
		resp *captablesvc.Response
		err  error
	)
	if h.Cached != nil {
		resp, err = h.Cached.GetCapTable(c.Context(), actor.CompanyID, asOf)
	} else {
		resp, err = h.Service.GetCapTable(c.Context(), actor.CompanyID, asOf)
	}
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Cap table computed", resp, fiber.Map{
		"entry_count": len(resp.Entries),
	})
}

// SimulateRound POST /api/v1/captable/simulate-round
func (h *Handlers) SimulateRound(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	var body simulation.Request
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.PreMoneyValuation == 0 || body.InvestmentAmount == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	snapshot, err := h.Service.GetSnapshot(c.Context(), actor.CompanyID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	result, err := simulation.Simulate(snapshot, body)
	if err != nil {
		if code, ok := simulationStatusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Round simulated", result, nil)
}
