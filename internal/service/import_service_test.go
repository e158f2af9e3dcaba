package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
	"github.com/qs3c/leadcrm_go_server/internal/testutil"
)

func setupImportService(t *testing.T) (*ImportService, *gorm.DB, *model.Company) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewImportService(repository.NewLeadRepository(db), nil, &config.Config{})
	company := testutil.TestCompany(t, db)
	return svc, db, company
}

func TestImportLeads(t *testing.T) {
	svc, db, company := setupImportService(t)

	csv := strings.Join([]string{
		"Name,Email,Phone,Notes",
		"张三,zhangsan@example.com,13800000001,电话联系过",
		"李四,lisi@example.com,13800000002,",
		",empty@example.com,13800000003,",
		"王五,wangwu@example.com,,",
	}, "\n")

	resp, err := svc.ImportLeads(company.ID, nil, strings.NewReader(csv), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.Errors, 1)
	// 行号从表头后数起
	assert.Equal(t, 4, resp.Errors[0].Row)

	leads, err := repository.NewLeadRepository(db).ListAll(company.ID)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	for _, l := range leads {
		assert.Equal(t, "csv", l.Source)
		assert.Equal(t, model.LeadStatusUnassigned, l.Status)
	}
}

func TestImportLeadsIntoGroup(t *testing.T) {
	svc, db, company := setupImportService(t)

	manager := testutil.TestManager(t, db, company.ID)
	group := testutil.TestGroup(t, db, company.ID, testutil.WithGroupManager(manager.ID))

	csv := "name\n张三\n李四\n"
	resp, err := svc.ImportLeads(company.ID, &group.ID, strings.NewReader(csv), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Imported)

	leads, err := repository.NewLeadRepository(db).ListAll(company.ID)
	require.NoError(t, err)
	for _, l := range leads {
		require.NotNil(t, l.AssignedTo)
		assert.Equal(t, manager.ID, *l.AssignedTo)
		assert.Equal(t, model.LeadStatusAssigned, l.Status)
	}
}

func TestImportLeadsIntoUnassignedGroup(t *testing.T) {
	svc, db, company := setupImportService(t)

	group := testutil.TestGroup(t, db, company.ID)
	_, err := svc.ImportLeads(company.ID, &group.ID, strings.NewReader("name\n张三\n"), nil)
	assert.ErrorIs(t, err, ErrGroupUnassigned)
}

func TestImportLeadsMissingNameColumn(t *testing.T) {
	svc, _, company := setupImportService(t)

	_, err := svc.ImportLeads(company.ID, nil, strings.NewReader("email,phone\na@b.com,123\n"), nil)
	assert.ErrorIs(t, err, ErrImportNoHeader)
}

func TestImportLeadsEmptyFile(t *testing.T) {
	svc, _, company := setupImportService(t)

	_, err := svc.ImportLeads(company.ID, nil, strings.NewReader(""), nil)
	assert.ErrorIs(t, err, ErrImportEmpty)

	_, err = svc.ImportLeads(company.ID, nil, strings.NewReader("name\n"), nil)
	assert.ErrorIs(t, err, ErrImportEmpty)
}
