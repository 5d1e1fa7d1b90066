package shareclasses

import (
	"context"
	"testing"

	"captable-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupClassTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ShareClass{}))
	return &Service{DB: db}
}

func TestCreate_Defaults(t *testing.T) {
	svc := setupClassTest(t)

	sc, err := svc.Create(context.Background(), CreateInput{
		CompanyID:       uuid.New(),
		Code:            "ORD",
		Name:            "Ordinary",
		HasVotingRights: true,
		VotesPerShare:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ShareClassActive, sc.Status)
	assert.NotEqual(t, uuid.Nil, sc.ClassID)
}

func TestCreate_RejectsBadCode(t *testing.T) {
	svc := setupClassTest(t)

	for _, code := range []string{"", "ord", "WAY-TOO-LONG-CLASS-CODE-X", "-A"} {
		_, err := svc.Create(context.Background(), CreateInput{
			CompanyID: uuid.New(), Code: code, Name: "X",
		})
		assert.Equal(t, ErrCodeRequired, err, "code %q", code)
	}
}

func TestCreate_RejectsDuplicateCodePerCompany(t *testing.T) {
	svc := setupClassTest(t)
	companyID := uuid.New()

	_, err := svc.Create(context.Background(), CreateInput{CompanyID: companyID, Code: "ORD", Name: "Ordinary"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{CompanyID: companyID, Code: "ORD", Name: "Again"})
	assert.Equal(t, ErrCodeTaken, err)

	// Same code in another company is fine.
	_, err = svc.Create(context.Background(), CreateInput{CompanyID: uuid.New(), Code: "ORD", Name: "Ordinary"})
	assert.NoError(t, err)
}

func TestCreate_ConvertibleRequiresRatioAndTarget(t *testing.T) {
	svc := setupClassTest(t)
	companyID := uuid.New()
	target := uuid.New()
	zero := 0.0
	two := 2.0

	_, err := svc.Create(context.Background(), CreateInput{
		CompanyID: companyID, Code: "PREF-A", Name: "Preferred A",
		IsConvertible: true,
	})
	assert.Equal(t, ErrConversionIncomplete, err)

	_, err = svc.Create(context.Background(), CreateInput{
		CompanyID: companyID, Code: "PREF-A", Name: "Preferred A",
		IsConvertible: true, ConvertsToClassID: &target, ConversionRatio: &zero,
	})
	assert.Equal(t, ErrConversionIncomplete, err)

	_, err = svc.Create(context.Background(), CreateInput{
		CompanyID: companyID, Code: "PREF-A", Name: "Preferred A",
		IsConvertible: true, ConvertsToClassID: &target, ConversionRatio: &two,
	})
	assert.NoError(t, err)
}

func TestCreate_NonVotingCannotCarryVotes(t *testing.T) {
	svc := setupClassTest(t)

	_, err := svc.Create(context.Background(), CreateInput{
		CompanyID: uuid.New(), Code: "NV", Name: "Non-voting",
		HasVotingRights: false, VotesPerShare: 3,
	})
	assert.Equal(t, ErrVotesWithoutRights, err)
}

func TestUpdate_RevalidatesInvariants(t *testing.T) {
	svc := setupClassTest(t)
	companyID := uuid.New()

	sc, err := svc.Create(context.Background(), CreateInput{
		CompanyID: companyID, Code: "ORD", Name: "Ordinary",
		HasVotingRights: true, VotesPerShare: 1,
	})
	require.NoError(t, err)

	off := false
	_, err = svc.Update(context.Background(), companyID, sc.ClassID, UpdateInput{
		HasVotingRights: &off,
	})
	assert.Equal(t, ErrVotesWithoutRights, err)

	zero := 0
	updated, err := svc.Update(context.Background(), companyID, sc.ClassID, UpdateInput{
		HasVotingRights: &off, VotesPerShare: &zero,
	})
	require.NoError(t, err)
	assert.False(t, updated.HasVotingRights)
	assert.Zero(t, updated.VotesPerShare)
}

func TestDeactivate_KeepsRow(t *testing.T) {
	svc := setupClassTest(t)
	companyID := uuid.New()

	sc, err := svc.Create(context.Background(), CreateInput{CompanyID: companyID, Code: "ORD", Name: "Ordinary"})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(context.Background(), companyID, sc.ClassID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareClassInactive, deactivated.Status)

	got, err := svc.GetByID(context.Background(), companyID, sc.ClassID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareClassInactive, got.Status)
}

func TestGetByID_WrongCompanyIsNotFound(t *testing.T) {
	svc := setupClassTest(t)
	companyID := uuid.New()

	sc, err := svc.Create(context.Background(), CreateInput{CompanyID: companyID, Code: "ORD", Name: "Ordinary"})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), uuid.New(), sc.ClassID)
	assert.Equal(t, ErrClassNotFound, err)
}

func TestListByCompany_DisplayOrder(t *testing.T) {
	svc := setupClassTest(t)
	companyID := uuid.New()

	for _, c := range []struct {
		code  string
		order int
	}{{"PREF-A", 2}, {"ORD", 1}, {"PREF-B", 3}} {
		_, err := svc.Create(context.Background(), CreateInput{
			CompanyID: companyID, Code: c.code, Name: c.code, DisplayOrder: c.order,
		})
		require.NoError(t, err)
	}

	classes, err := svc.ListByCompany(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, classes, 3)
	assert.Equal(t, "ORD", classes[0].Code)
	assert.Equal(t, "PREF-A", classes[1].Code)
	assert.Equal(t, "PREF-B", classes[2].Code)
}
