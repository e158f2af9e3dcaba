package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/api/middleware"
	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/response"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
	"github.com/qs3c/leadcrm_go_server/internal/service"
	"github.com/qs3c/leadcrm_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockAuth 跳过 JWT，直接把身份塞进上下文
func mockAuth(userID, companyID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.CompanyIDKey, companyID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func setupLeadHandler(t *testing.T) (*LeadHandler, *gorm.DB, *model.Company) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	leadRepo := repository.NewLeadRepository(db)
	leadService := service.NewLeadService(
		leadRepo,
		repository.NewTeamRepository(db),
		repository.NewClientRepository(db),
		repository.NewCallRepository(db),
	)
	importService := service.NewImportService(leadRepo, nil, &config.Config{})
	h := NewLeadHandler(leadService, importService)
	company := testutil.TestCompany(t, db)
	return h, db, company
}

func TestLeadHandler_List(t *testing.T) {
	h, db, company := setupLeadHandler(t)

	testutil.TestLead(t, db, company.ID)
	testutil.TestLead(t, db, company.ID)

	router := gin.New()
	router.Use(mockAuth(1001, company.ID, model.RoleAdmin))
	router.GET("/leads", h.List)

	req := httptest.NewRequest("GET", "/leads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total"])
}

func TestLeadHandler_Assign(t *testing.T) {
	h, db, company := setupLeadHandler(t)

	manager := testutil.TestManager(t, db, company.ID)
	lead := testutil.TestLead(t, db, company.ID)

	router := gin.New()
	router.Use(mockAuth(1001, company.ID, model.RoleAdmin))
	router.POST("/leads/:id/assign", h.Assign)

	body, _ := json.Marshal(map[string]interface{}{"assignee_id": manager.ID})
	req := httptest.NewRequest("POST", "/leads/"+itoa(lead.ID)+"/assign", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, manager.Name, data["owner_name"])
}

func TestLeadHandler_AssignUnknownAssignee(t *testing.T) {
	h, db, company := setupLeadHandler(t)

	lead := testutil.TestLead(t, db, company.ID)

	router := gin.New()
	router.Use(mockAuth(1001, company.ID, model.RoleAdmin))
	router.POST("/leads/:id/assign", h.Assign)

	body, _ := json.Marshal(map[string]interface{}{"assignee_id": 424242})
	req := httptest.NewRequest("POST", "/leads/"+itoa(lead.ID)+"/assign", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestLeadHandler_DeleteGroup(t *testing.T) {
	h, db, company := setupLeadHandler(t)

	manager := testutil.TestManager(t, db, company.ID)
	group := testutil.TestGroup(t, db, company.ID, testutil.WithGroupManager(manager.ID))
	testutil.TestLead(t, db, company.ID, testutil.WithGroup(group.ID))
	testutil.TestLead(t, db, company.ID, testutil.WithGroup(group.ID))

	router := gin.New()
	router.Use(mockAuth(1001, company.ID, model.RoleAdmin))
	router.DELETE("/lead-groups/:id", h.DeleteGroup)

	req := httptest.NewRequest("DELETE", "/lead-groups/"+itoa(group.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["removed_leads"])
}

func TestLeadHandler_Import(t *testing.T) {
	h, _, company := setupLeadHandler(t)

	router := gin.New()
	router.Use(mockAuth(1001, company.ID, model.RoleAdmin))
	router.POST("/leads/import", h.Import)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "leads.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("name,email\n张三,zhangsan@example.com\n,missing@example.com\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/leads/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["imported"])
	assert.Equal(t, float64(1), data["skipped"])
}

func TestLeadHandler_ImportMissingFile(t *testing.T) {
	h, _, company := setupLeadHandler(t)

	router := gin.New()
	router.Use(mockAuth(1001, company.ID, model.RoleAdmin))
	router.POST("/leads/import", h.Import)

	req := httptest.NewRequest("POST", "/leads/import", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}
