package ledger

import (
	"time"

	ledgersvc "captable-backend/internal/application/ledger"
	"captable-backend/internal/middleware"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *ledgersvc.Service
}

// GetTransactions GET /api/v1/ledger/get-transactions?type=&from=&to=
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	filter := ledgersvc.ListFilter{Type: c.Query("type")}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return response.Error(c, "Invalid from date, expected YYYY-MM-DD", 400, nil)
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return response.Error(c, "Invalid to date, expected YYYY-MM-DD", 400, nil)
		}
		filter.To = &t
	}

	entries, err := h.Service.ListByCompany(c.Context(), actor.CompanyID, filter)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Transactions retrieved", entries, fiber.Map{
		"count": len(entries),
	})
}

// GetShareholderTransactions GET /api/v1/ledger/get-shareholder-transactions/:shareholder_id
func (h *Handlers) GetShareholderTransactions(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	shareholderID, err := uuid.Parse(c.Params("shareholder_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for shareholder_id", 400, nil)
	}

	entries, err := h.Service.ListByShareholder(c.Context(), actor.CompanyID, shareholderID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Transactions retrieved", entries, fiber.Map{
		"count": len(entries),
	})
}

// GetTransaction GET /api/v1/ledger/get-transaction/:tx_id
func (h *Handlers) GetTransaction(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	txID, err := uuid.Parse(c.Params("tx_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for tx_id", 400, nil)
	}

	entry, err := h.Service.GetByID(c.Context(), actor.CompanyID, txID)
	if err != nil {
		if err == ledgersvc.ErrTransactionNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Transaction retrieved", entry, nil)
}
