package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/testutil"
)

func TestTeamRepository_GetManagerByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTeamRepository(db)
	company := testutil.TestCompany(t, db)
	created := testutil.TestManager(t, db, company.ID)

	found, err := repo.GetManagerByID(company.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, found.Email)
}

func TestTeamRepository_GetManagerByID_WrongCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTeamRepository(db)
	company := testutil.TestCompany(t, db)
	other := testutil.TestCompany(t, db)
	created := testutil.TestManager(t, db, company.ID)

	// 租户隔离：别家公司查不到
	_, err := repo.GetManagerByID(other.ID, created.ID)
	assert.Error(t, err)
}

func TestTeamRepository_ListManagers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTeamRepository(db)
	company := testutil.TestCompany(t, db)
	other := testutil.TestCompany(t, db)

	testutil.TestManager(t, db, company.ID)
	testutil.TestManager(t, db, company.ID)
	testutil.TestManager(t, db, other.ID)

	managers, err := repo.ListManagers(company.ID)
	require.NoError(t, err)
	assert.Len(t, managers, 2)
}

func TestTeamRepository_CountEmployeesOfManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTeamRepository(db)
	company := testutil.TestCompany(t, db)
	manager := testutil.TestManager(t, db, company.ID)

	// 一个按行 ID 挂靠，一个按 user_id 挂靠，两种都要算进去
	testutil.TestEmployee(t, db, company.ID, testutil.WithManagerRef(manager.ID))
	testutil.TestEmployee(t, db, company.ID, testutil.WithManagerRef(manager.UserID))
	testutil.TestEmployee(t, db, company.ID)

	count, err := repo.CountEmployeesOfManager(company.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestTeamRepository_EmailTakenInRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTeamRepository(db)
	company := testutil.TestCompany(t, db)
	manager := testutil.TestManager(t, db, company.ID,
		testutil.WithManagerEmail("dup@example.com"))

	t.Run("taken in same role", func(t *testing.T) {
		taken, err := repo.EmailTakenInRole(company.ID, model.RoleManager, "dup@example.com", 0)
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("same email different role is fine", func(t *testing.T) {
		taken, err := repo.EmailTakenInRole(company.ID, model.RoleEmployee, "dup@example.com", 0)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("excludes self on update", func(t *testing.T) {
		taken, err := repo.EmailTakenInRole(company.ID, model.RoleManager, "dup@example.com", manager.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestTeamRepository_MaxUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTeamRepository(db)
	company := testutil.TestCompany(t, db)

	testutil.TestAdmin(t, db, company.ID)
	manager := testutil.TestManager(t, db, company.ID)
	employee := testutil.TestEmployee(t, db, company.ID)

	max, err := repo.MaxUserID()
	require.NoError(t, err)

	want := manager.UserID
	if employee.UserID > want {
		want = employee.UserID
	}
	assert.Equal(t, want, max)
}

func TestTeamRepository_DeleteManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTeamRepository(db)
	company := testutil.TestCompany(t, db)
	manager := testutil.TestManager(t, db, company.ID)

	require.NoError(t, repo.DeleteManager(company.ID, manager.ID))

	_, err := repo.GetManagerByID(company.ID, manager.ID)
	assert.Error(t, err)
}
