package ledger

import (
	"context"
	"testing"
	"time"

	"captable-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ShareTransaction{}))
	return &Service{DB: db}, db
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func seedEntry(t *testing.T, svc *Service, companyID uuid.UUID, txType, refDate string, holder uuid.UUID) domain.ShareTransaction {
	t.Helper()
	entry := domain.ShareTransaction{
		CompanyID:       companyID,
		Type:            txType,
		ShareClassID:    uuid.New(),
		Quantity:        100,
		PricePerShare:   1,
		ReferenceDate:   day(t, refDate),
		ToShareholderID: &holder,
		CreatedBy:       uuid.New(),
	}
	require.NoError(t, svc.Append(svc.DB, &entry))
	return entry
}

func TestAppend_RejectsInvalidEntries(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	base := domain.ShareTransaction{
		CompanyID:     uuid.New(),
		Type:          domain.TxIssue,
		ShareClassID:  uuid.New(),
		Quantity:      10,
		PricePerShare: 1,
		ReferenceDate: day(t, "2024-01-01"),
	}

	zeroQty := base
	zeroQty.Quantity = 0
	assert.Equal(t, ErrQuantityNotPositive, svc.Append(svc.DB, &zeroQty))

	negPrice := base
	negPrice.PricePerShare = -0.01
	assert.Equal(t, ErrPriceNegative, svc.Append(svc.DB, &negPrice))

	badType := base
	badType.Type = "split"
	assert.Equal(t, ErrUnknownType, svc.Append(svc.DB, &badType))

	var count int64
	svc.DB.Model(&domain.ShareTransaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestListByCompany_NewestFirst(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	companyID := uuid.New()
	holder := uuid.New()

	seedEntry(t, svc, companyID, domain.TxIssue, "2024-01-01", holder)
	seedEntry(t, svc, companyID, domain.TxTransfer, "2024-03-01", holder)
	seedEntry(t, svc, companyID, domain.TxCancel, "2024-02-01", holder)
	seedEntry(t, svc, uuid.New(), domain.TxIssue, "2024-04-01", holder)

	entries, err := svc.ListByCompany(context.Background(), companyID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.TxTransfer, entries[0].Type)
	assert.Equal(t, domain.TxCancel, entries[1].Type)
	assert.Equal(t, domain.TxIssue, entries[2].Type)
}

func TestListByCompany_Filters(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	companyID := uuid.New()
	holder := uuid.New()

	seedEntry(t, svc, companyID, domain.TxIssue, "2024-01-01", holder)
	seedEntry(t, svc, companyID, domain.TxIssue, "2024-02-01", holder)
	seedEntry(t, svc, companyID, domain.TxCancel, "2024-03-01", holder)

	byType, err := svc.ListByCompany(context.Background(), companyID, ListFilter{Type: domain.TxIssue})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	from := day(t, "2024-01-15")
	to := day(t, "2024-02-15")
	windowed, err := svc.ListByCompany(context.Background(), companyID, ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, day(t, "2024-02-01"), windowed[0].ReferenceDate.UTC())
}

func TestListByShareholder_MatchesEitherSide(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	companyID := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	seedEntry(t, svc, companyID, domain.TxIssue, "2024-01-01", alice)

	transfer := domain.ShareTransaction{
		CompanyID:         companyID,
		Type:              domain.TxTransfer,
		ShareClassID:      uuid.New(),
		Quantity:          40,
		PricePerShare:     2,
		ReferenceDate:     day(t, "2024-02-01"),
		FromShareholderID: &alice,
		ToShareholderID:   &bob,
		CreatedBy:         uuid.New(),
	}
	require.NoError(t, svc.Append(svc.DB, &transfer))
	seedEntry(t, svc, companyID, domain.TxIssue, "2024-03-01", bob)

	forAlice, err := svc.ListByShareholder(context.Background(), companyID, alice)
	require.NoError(t, err)
	assert.Len(t, forAlice, 2)

	forBob, err := svc.ListByShareholder(context.Background(), companyID, bob)
	require.NoError(t, err)
	assert.Len(t, forBob, 2)
}

func TestGetByID(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	companyID := uuid.New()
	entry := seedEntry(t, svc, companyID, domain.TxIssue, "2024-01-01", uuid.New())

	got, err := svc.GetByID(context.Background(), companyID, entry.TxID)
	require.NoError(t, err)
	assert.Equal(t, entry.TxID, got.TxID)

	_, err = svc.GetByID(context.Background(), companyID, uuid.New())
	assert.Equal(t, ErrTransactionNotFound, err)

	// Company scoping: the right id under the wrong tenant stays hidden.
	_, err = svc.GetByID(context.Background(), uuid.New(), entry.TxID)
	assert.Equal(t, ErrTransactionNotFound, err)
}
