package equity

import (
	equitysvc "captable-backend/internal/application/equity"
	"captable-backend/internal/middleware"
	"captable-backend/internal/pkg/response"
	"captable-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *equitysvc.Service
}

var equityStatusMap = map[string]int{
	equitysvc.ErrQuantityNotPositive.Error(): 400,
	equitysvc.ErrPriceNegative.Error():       400,
	equitysvc.ErrShareClassNotFound.Error():  404,
	equitysvc.ErrShareClassInactive.Error():  400,
	equitysvc.ErrShareholderNotFound.Error(): 404,
	equitysvc.ErrSameShareholder.Error():     400,
	equitysvc.ErrSameClass.Error():           400,
	equitysvc.ErrNotConvertible.Error():      400,
	equitysvc.ErrInsufficientBalance.Error(): 400,
	equitysvc.ErrConcurrencyConflict.Error(): 409,
}

func equityError(c *fiber.Ctx, err error) error {
	if code, ok := equityStatusMap[err.Error()]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}

// IssueShares POST /api/v1/equity/issue-shares
func (h *Handlers) IssueShares(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	var body struct {
		ShareClassID    string                 `json:"share_class_id"`
		ToShareholderID string                 `json:"to_shareholder_id"`
		Quantity        float64                `json:"quantity"`
		PricePerShare   float64                `json:"price_per_share"`
		ReferenceDate   string                 `json:"reference_date"`
		Metadata        map[string]interface{} `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.ShareClassID == "" || body.ToShareholderID == "" || body.Quantity == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	classID, err := uuid.Parse(body.ShareClassID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for share_class_id", 400, nil)
	}
	toID, err := uuid.Parse(body.ToShareholderID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for to_shareholder_id", 400, nil)
	}
	if !validation.IsValidQuantity(body.Quantity) {
		return response.Error(c, "Quantity must be a positive number", 400, nil)
	}
	if !validation.IsValidPrice(body.PricePerShare) {
		return response.Error(c, "Price per share cannot be negative", 400, nil)
	}
	refDate, ok := validation.ParseReferenceDate(body.ReferenceDate)
	if !ok {
		return response.Error(c, "Invalid reference_date, expected YYYY-MM-DD", 400, nil)
	}

	share, err := h.Service.IssueShares(c.Context(), equitysvc.IssueInput{
		CompanyID:       actor.CompanyID,
		ShareClassID:    classID,
		ToShareholderID: toID,
		Quantity:        body.Quantity,
		PricePerShare:   body.PricePerShare,
		ReferenceDate:   refDate,
		Metadata:        body.Metadata,
		ActorID:         actor.ActorID,
	})
	if err != nil {
		return equityError(c, err)
	}
	return response.SuccessCreated(c, "Shares issued successfully", share, nil)
}

// TransferShares POST /api/v1/equity/transfer-shares
func (h *Handlers) TransferShares(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	var body struct {
		ShareClassID      string                 `json:"share_class_id"`
		FromShareholderID string                 `json:"from_shareholder_id"`
		ToShareholderID   string                 `json:"to_shareholder_id"`
		Quantity          float64                `json:"quantity"`
		PricePerShare     float64                `json:"price_per_share"`
		ReferenceDate     string                 `json:"reference_date"`
		Metadata          map[string]interface{} `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.ShareClassID == "" || body.FromShareholderID == "" || body.ToShareholderID == "" || body.Quantity == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	classID, err := uuid.Parse(body.ShareClassID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for share_class_id", 400, nil)
	}
	fromID, err := uuid.Parse(body.FromShareholderID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for from_shareholder_id", 400, nil)
	}
	toID, err := uuid.Parse(body.ToShareholderID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for to_shareholder_id", 400, nil)
	}
	if !validation.IsValidQuantity(body.Quantity) {
		return response.Error(c, "Quantity must be a positive number", 400, nil)
	}
	if !validation.IsValidPrice(body.PricePerShare) {
		return response.Error(c, "Price per share cannot be negative", 400, nil)
	}
	refDate, ok := validation.ParseReferenceDate(body.ReferenceDate)
	if !ok {
		return response.Error(c, "Invalid reference_date, expected YYYY-MM-DD", 400, nil)
	}

	share, err := h.Service.TransferShares(c.Context(), equitysvc.TransferInput{
		CompanyID:         actor.CompanyID,
		ShareClassID:      classID,
		FromShareholderID: fromID,
		ToShareholderID:   toID,
		Quantity:          body.Quantity,
		PricePerShare:     body.PricePerShare,
		ReferenceDate:     refDate,
		Metadata:          body.Metadata,
		ActorID:           actor.ActorID,
	})
	if err != nil {
		return equityError(c, err)
	}
	return response.Success(c, "Shares transferred successfully", share, nil)
}

// CancelShares POST /api/v1/equity/cancel-shares
func (h *Handlers) CancelShares(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	var body struct {
		ShareClassID      string  `json:"share_class_id"`
		FromShareholderID string  `json:"from_shareholder_id"`
		Quantity          float64 `json:"quantity"`
		Reason            string  `json:"reason"`
		ReferenceDate     string  `json:"reference_date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.ShareClassID == "" || body.FromShareholderID == "" || body.Quantity == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	classID, err := uuid.Parse(body.ShareClassID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for share_class_id", 400, nil)
	}
	fromID, err := uuid.Parse(body.FromShareholderID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for from_shareholder_id", 400, nil)
	}
	if !validation.IsValidQuantity(body.Quantity) {
		return response.Error(c, "Quantity must be a positive number", 400, nil)
	}
	refDate, ok := validation.ParseReferenceDate(body.ReferenceDate)
	if !ok {
		return response.Error(c, "Invalid reference_date, expected YYYY-MM-DD", 400, nil)
	}

	err = h.Service.CancelShares(c.Context(), equitysvc.CancelInput{
		CompanyID:         actor.CompanyID,
		ShareClassID:      classID,
		FromShareholderID: fromID,
		Quantity:          body.Quantity,
		Reason:            body.Reason,
		ReferenceDate:     refDate,
		ActorID:           actor.ActorID,
	})
	if err != nil {
		return equityError(c, err)
	}
	return response.Success(c, "Shares cancelled successfully", fiber.Map{
		"cancelled_quantity": body.Quantity,
	}, nil)
}

// ConvertShares POST /api/v1/equity/convert-shares
func (h *Handlers) ConvertShares(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	var body struct {
		FromShareClassID string  `json:"from_share_class_id"`
		ToShareClassID   string  `json:"to_share_class_id"`
		ShareholderID    string  `json:"shareholder_id"`
		Quantity         float64 `json:"quantity"`
		ReferenceDate    string  `json:"reference_date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.FromShareClassID == "" || body.ToShareClassID == "" || body.ShareholderID == "" || body.Quantity == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	fromClassID, err := uuid.Parse(body.FromShareClassID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for from_share_class_id", 400, nil)
	}
	toClassID, err := uuid.Parse(body.ToShareClassID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for to_share_class_id", 400, nil)
	}
	holderID, err := uuid.Parse(body.ShareholderID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for shareholder_id", 400, nil)
	}
	if !validation.IsValidQuantity(body.Quantity) {
		return response.Error(c, "Quantity must be a positive number", 400, nil)
	}
	refDate, ok := validation.ParseReferenceDate(body.ReferenceDate)
	if !ok {
		return response.Error(c, "Invalid reference_date, expected YYYY-MM-DD", 400, nil)
	}

	share, err := h.Service.ConvertShares(c.Context(), equitysvc.ConvertInput{
		CompanyID:        actor.CompanyID,
		FromShareClassID: fromClassID,
		ToShareClassID:   toClassID,
		ShareholderID:    holderID,
		Quantity:         body.Quantity,
		ReferenceDate:    refDate,
		ActorID:          actor.ActorID,
	})
	if err != nil {
		return equityError(c, err)
	}
	return response.Success(c, "Shares converted successfully", share, nil)
}
