package captable

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	captablesvc "captable-backend/internal/application/captable"
	"captable-backend/internal/domain"
	"captable-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCapTableAPI(t *testing.T) (*fiber.App, *gorm.DB, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.ShareClass{}, &domain.ShareTransaction{},
		&domain.Share{}, &domain.Shareholder{},
	))

	h := &Handlers{Service: &captablesvc.Service{DB: db}}

	app := fiber.New()
	group := app.Group("/api/v1/captable", middleware.RequireTenant())
	group.Get("/view-captable", h.ViewCapTable)
	group.Post("/simulate-round", h.SimulateRound)
	return app, db, uuid.New()
}

func seedHoldings(t *testing.T, db *gorm.DB, companyID uuid.UUID) {
	t.Helper()
	class := domain.ShareClass{
		CompanyID: companyID, Code: "ORD", Name: "Ordinary",
		HasVotingRights: true, VotesPerShare: 1, Status: domain.ShareClassActive,
	}
	require.NoError(t, db.Create(&class).Error)

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, h := range []struct {
		name string
		qty  float64
	}{{"Alice", 600}, {"Bob", 400}} {
		holder := domain.Shareholder{CompanyID: companyID, Name: h.name, Type: domain.HolderFounder}
		require.NoError(t, db.Create(&holder).Error)
		require.NoError(t, db.Create(&domain.Share{
			CompanyID: companyID, ShareholderID: holder.ShareholderID,
			ShareClassID: class.ClassID, Quantity: h.qty, AcquisitionPrice: 1,
			AcquisitionDate: day, Status: domain.ShareActive,
		}).Error)
	}
}

func request(t *testing.T, app *fiber.App, companyID uuid.UUID, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Company-Id", companyID.String())
	req.Header.Set("X-Actor-Id", uuid.New().String())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func TestViewCapTable_Endpoint(t *testing.T) {
	app, db, companyID := setupCapTableAPI(t)
	seedHoldings(t, db, companyID)

	status, body := request(t, app, companyID, "GET", "/api/v1/captable/view-captable", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, 1000.0, data["total_shares"])
	assert.Len(t, data["entries"].([]interface{}), 2)

	meta := body["metadata"].(map[string]interface{})
	assert.Equal(t, 2.0, meta["entry_count"])
}

func TestViewCapTable_AsOfFiltersHoldings(t *testing.T) {
	app, db, companyID := setupCapTableAPI(t)
	seedHoldings(t, db, companyID)

	status, body := request(t, app, companyID, "GET",
		"/api/v1/captable/view-captable?as_of=2023-01-01", nil)
	require.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["total_shares"])

	status, _ = request(t, app, companyID, "GET",
		"/api/v1/captable/view-captable?as_of=01/02/2024", nil)
	assert.Equal(t, 400, status)
}

func TestSimulateRound_Endpoint(t *testing.T) {
	app, db, companyID := setupCapTableAPI(t)
	seedHoldings(t, db, companyID)

	status, body := request(t, app, companyID, "POST", "/api/v1/captable/simulate-round", map[string]interface{}{
		"pre_money_valuation": 9_000_000,
		"investment_amount":   1_000_000,
	})
	require.Equal(t, 200, status)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.InDelta(t, 9000.0, data["price_per_share"], 1e-6) // 9,000,000 / 1,000 shares
	assert.InDelta(t, 10.0, data["total_dilution"], 0.001)
	assert.Len(t, data["existing_holders"].([]interface{}), 2)

	// A simulation writes nothing.
	var txCount, shareCount int64
	db.Model(&domain.ShareTransaction{}).Count(&txCount)
	db.Model(&domain.Share{}).Count(&shareCount)
	assert.Zero(t, txCount)
	assert.EqualValues(t, 2, shareCount)
}

func TestSimulateRound_ValidationErrors(t *testing.T) {
	app, db, companyID := setupCapTableAPI(t)
	seedHoldings(t, db, companyID)

	status, _ := request(t, app, companyID, "POST", "/api/v1/captable/simulate-round", map[string]interface{}{
		"investment_amount": 1_000_000,
	})
	assert.Equal(t, 400, status)

	status, body := request(t, app, companyID, "POST", "/api/v1/captable/simulate-round", map[string]interface{}{
		"pre_money_valuation":    9_000_000,
		"investment_amount":      1_000_000,
		"include_option_pool":    true,
		"option_pool_percentage": 1.5,
	})
	assert.Equal(t, 400, status)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "Option pool percentage must be at least 0 and below 1", errObj["message"])
}

func TestCapTableEndpoints_RequireTenantContext(t *testing.T) {
	app, _, _ := setupCapTableAPI(t)

	req := httptest.NewRequest("GET", "/api/v1/captable/view-captable", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}
