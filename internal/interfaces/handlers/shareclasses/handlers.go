package shareclasses

import (
	classsvc "captable-backend/internal/application/shareclasses"
	"captable-backend/internal/middleware"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *classsvc.Service
}

var classStatusMap = map[string]int{
	classsvc.ErrClassNotFound.Error():        404,
	classsvc.ErrCodeRequired.Error():         400,
	classsvc.ErrNameRequired.Error():         400,
	classsvc.ErrCodeTaken.Error():            409,
	classsvc.ErrConversionIncomplete.Error(): 400,
	classsvc.ErrConversionSelf.Error():       400,
	classsvc.ErrVotesWithoutRights.Error():   400,
	classsvc.ErrNegativePreference.Error():   400,
	classsvc.ErrUnknownAntiDilution.Error():  400,
}

func classError(c *fiber.Ctx, err error) error {
	if code, ok := classStatusMap[err.Error()]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}

type classBody struct {
	Code                  string   `json:"code"`
	Name                  string   `json:"name"`
	HasVotingRights       *bool    `json:"has_voting_rights"`
	VotesPerShare         *int     `json:"votes_per_share"`
	LiquidationPreference *float64 `json:"liquidation_preference"`
	Participating         *bool    `json:"participating"`
	DividendPreference    *float64 `json:"dividend_preference"`
	IsConvertible         *bool    `json:"is_convertible"`
	ConvertsToClassID     *string  `json:"converts_to_class_id"`
	ConversionRatio       *float64 `json:"conversion_ratio"`
	AntiDilution          *string  `json:"anti_dilution"`
	DisplayOrder          *int     `json:"display_order"`
}

// CreateClass POST /api/v1/share-classes/create-class
func (h *Handlers) CreateClass(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	var body classBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Code == "" || body.Name == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	in := classsvc.CreateInput{
		CompanyID: actor.CompanyID,
		Code:      body.Code,
		Name:      body.Name,
	}
	if body.HasVotingRights != nil {
		in.HasVotingRights = *body.HasVotingRights
	}
	if body.VotesPerShare != nil {
		in.VotesPerShare = *body.VotesPerShare
	}
	if body.LiquidationPreference != nil {
		in.LiquidationPreference = *body.LiquidationPreference
	}
	if body.Participating != nil {
		in.Participating = *body.Participating
	}
	in.DividendPreference = body.DividendPreference
	if body.IsConvertible != nil {
		in.IsConvertible = *body.IsConvertible
	}
	if body.ConvertsToClassID != nil {
		target, err := uuid.Parse(*body.ConvertsToClassID)
		if err != nil {
			return response.Error(c, "Invalid UUID format for converts_to_class_id", 400, nil)
		}
		in.ConvertsToClassID = &target
	}
	in.ConversionRatio = body.ConversionRatio
	in.AntiDilution = body.AntiDilution
	if body.DisplayOrder != nil {
		in.DisplayOrder = *body.DisplayOrder
	}

	sc, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return classError(c, err)
	}
	return response.SuccessCreated(c, "Share class created", sc, nil)
}

// UpdateClass PATCH /api/v1/share-classes/update-class/:class_id
func (h *Handlers) UpdateClass(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	classID, err := uuid.Parse(c.Params("class_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for class_id", 400, nil)
	}
	var body classBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	in := classsvc.UpdateInput{
		HasVotingRights:       body.HasVotingRights,
		VotesPerShare:         body.VotesPerShare,
		LiquidationPreference: body.LiquidationPreference,
		Participating:         body.Participating,
		DividendPreference:    body.DividendPreference,
		IsConvertible:         body.IsConvertible,
		ConversionRatio:       body.ConversionRatio,
		AntiDilution:          body.AntiDilution,
		DisplayOrder:          body.DisplayOrder,
	}
	if body.Name != "" {
		in.Name = &body.Name
	}
	if body.ConvertsToClassID != nil {
		target, err := uuid.Parse(*body.ConvertsToClassID)
		if err != nil {
			return response.Error(c, "Invalid UUID format for converts_to_class_id", 400, nil)
		}
		in.ConvertsToClassID = &target
	}

	sc, err := h.Service.Update(c.Context(), actor.CompanyID, classID, in)
	if err != nil {
		return classError(c, err)
	}
	return response.Success(c, "Share class updated", sc, nil)
}

// DeactivateClass PATCH /api/v1/share-classes/deactivate-class/:class_id
func (h *Handlers) DeactivateClass(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	classID, err := uuid.Parse(c.Params("class_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for class_id", 400, nil)
	}
	sc, err := h.Service.Deactivate(c.Context(), actor.CompanyID, classID)
	if err != nil {
		return classError(c, err)
	}
	return response.Success(c, "Share class deactivated", sc, nil)
}

// ViewClasses GET /api/v1/share-classes/view-classes
func (h *Handlers) ViewClasses(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	classes, err := h.Service.ListByCompany(c.Context(), actor.CompanyID)
	if err != nil {
		return classError(c, err)
	}
	return response.Success(c, "Share classes retrieved", classes, nil)
}

// ViewClass GET /api/v1/share-classes/view-class/:class_id
func (h *Handlers) ViewClass(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	classID, err := uuid.Parse(c.Params("class_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for class_id", 400, nil)
	}
	sc, err := h.Service.GetByID(c.Context(), actor.CompanyID, classID)
	if err != nil {
		return classError(c, err)
	}
	return response.Success(c, "Share class retrieved", sc, nil)
}
