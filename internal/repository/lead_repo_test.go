package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/leadcrm_go_server/internal/testutil"
)

func TestLeadRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLeadRepository(db)
	company := testutil.TestCompany(t, db)
	created := testutil.TestLead(t, db, company.ID)

	found, err := repo.GetByID(company.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, found.Name)
}

func TestLeadRepository_GetByID_WrongCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLeadRepository(db)
	company := testutil.TestCompany(t, db)
	other := testutil.TestCompany(t, db)
	created := testutil.TestLead(t, db, company.ID)

	_, err := repo.GetByID(other.ID, created.ID)
	assert.Error(t, err)
}

func TestLeadRepository_ListAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLeadRepository(db)
	company := testutil.TestCompany(t, db)
	other := testutil.TestCompany(t, db)

	for i := 0; i < 3; i++ {
		testutil.TestLead(t, db, company.ID)
	}
	testutil.TestLead(t, db, other.ID)

	leads, err := repo.ListAll(company.ID)
	require.NoError(t, err)
	assert.Len(t, leads, 3)

	// 按 id 升序返回
	for i := 1; i < len(leads); i++ {
		assert.Greater(t, leads[i].ID, leads[i-1].ID)
	}
}

func TestLeadRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLeadRepository(db)
	company := testutil.TestCompany(t, db)
	lead := testutil.TestLead(t, db, company.ID)

	err := repo.UpdateFields(company.ID, lead.ID, map[string]interface{}{
		"status": "active",
		"notes":  "已接触",
	})
	require.NoError(t, err)

	updated, err := repo.GetByID(company.ID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", updated.Status)
	assert.Equal(t, "已接触", updated.Notes)
}

func TestLeadRepository_DeleteGroupCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLeadRepository(db)
	company := testutil.TestCompany(t, db)
	group := testutil.TestGroup(t, db, company.ID)

	for i := 0; i < 3; i++ {
		testutil.TestLead(t, db, company.ID, testutil.WithGroup(group.ID))
	}
	outside := testutil.TestLead(t, db, company.ID)

	removed, err := repo.DeleteGroupCascade(company.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	// 组没了，组内线索没了，组外线索还在
	_, err = repo.GetGroupByID(company.ID, group.ID)
	assert.Error(t, err)

	leads, err := repo.ListAll(company.ID)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, outside.ID, leads[0].ID)
}

func TestLeadRepository_DeleteGroupCascade_EmptyGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLeadRepository(db)
	company := testutil.TestCompany(t, db)
	group := testutil.TestGroup(t, db, company.ID)

	removed, err := repo.DeleteGroupCascade(company.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestLeadRepository_CountByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLeadRepository(db)
	company := testutil.TestCompany(t, db)
	group := testutil.TestGroup(t, db, company.ID)

	testutil.TestLead(t, db, company.ID, testutil.WithGroup(group.ID))
	testutil.TestLead(t, db, company.ID, testutil.WithGroup(group.ID))
	testutil.TestLead(t, db, company.ID)

	count, err := repo.CountByGroup(company.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
