package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/jwt"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/passreset"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
	"github.com/qs3c/leadcrm_go_server/internal/testutil"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB, *config.Config) {
	svc, db, cfg, _ := setupAuthServiceWithRedis(t)
	return svc, db, cfg
}

func setupAuthServiceWithRedis(t *testing.T) (*AuthService, *gorm.DB, *config.Config, *miniredis.Miniredis) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret",
			ExpireHours: 24,
		},
	}
	svc := NewAuthService(repository.NewTeamRepository(db), repository.NewCompanyRepository(db),
		nil, passreset.NewTokenStore(rdb), cfg)
	return svc, db, cfg, mr
}

func TestRegisterCompanyAndLogin(t *testing.T) {
	svc, _, cfg := setupAuthService(t)

	resp, err := svc.RegisterCompany(&dto.RegisterCompanyRequest{
		CompanyName: "先锋猎头",
		Industry:    "hr",
		AdminName:   "陈老板",
		Email:       "boss@example.com",
		Password:    "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.CompanyID)
	assert.Equal(t, int64(1001), resp.UserID)

	login, err := svc.Login(&dto.LoginRequest{
		Email:    "boss@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, model.RoleAdmin, login.User.Role)
	assert.Equal(t, "先锋猎头", login.User.CompanyName)

	claims, err := jwt.ParseToken(login.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, resp.CompanyID, claims.CompanyID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestRegisterCompanyDuplicateEmail(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	req := &dto.RegisterCompanyRequest{
		CompanyName: "公司A",
		AdminName:   "老板",
		Email:       "dup@example.com",
		Password:    "password123",
	}
	_, err := svc.RegisterCompany(req)
	require.NoError(t, err)

	req.CompanyName = "公司B"
	_, err = svc.RegisterCompany(req)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.RegisterCompany(&dto.RegisterCompanyRequest{
		CompanyName: "公司A",
		AdminName:   "老板",
		Email:       "boss@example.com",
		Password:    "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{
		Email:    "boss@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(&dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func resetTokenFromRedis(t *testing.T, mr *miniredis.Miniredis) string {
	t.Helper()
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "passreset:token:") {
			return strings.TrimPrefix(key, "passreset:token:")
		}
	}
	t.Fatal("没有找到重置令牌")
	return ""
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _, mr := setupAuthServiceWithRedis(t)

	_, err := svc.RegisterCompany(&dto.RegisterCompanyRequest{
		CompanyName: "公司A",
		AdminName:   "老板",
		Email:       "boss@example.com",
		Password:    "password123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "boss@example.com"))
	token := resetTokenFromRedis(t, mr)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "newpassword456"))

	// 旧密码失效，新密码可登录
	_, err = svc.Login(&dto.LoginRequest{Email: "boss@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(&dto.LoginRequest{Email: "boss@example.com", Password: "newpassword456"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, login.User.Role)

	// 令牌一次性
	err = svc.ResetPassword(context.Background(), token, "anotherpass789")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordResetEmployee(t *testing.T) {
	svc, db, _, mr := setupAuthServiceWithRedis(t)

	resp, err := svc.RegisterCompany(&dto.RegisterCompanyRequest{
		CompanyName: "公司A",
		AdminName:   "老板",
		Email:       "boss@example.com",
		Password:    "password123",
	})
	require.NoError(t, err)

	teamSvc := NewTeamService(repository.NewTeamRepository(db), repository.NewCompanyRepository(db), nil, &config.Config{})
	_, err = teamSvc.CreateEmployee(resp.CompanyID, &dto.CreateEmployeeRequest{
		Name:     "小李",
		Email:    "li@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "li@example.com"))
	token := resetTokenFromRedis(t, mr)
	require.NoError(t, svc.ResetPassword(context.Background(), token, "newpassword456"))

	login, err := svc.Login(&dto.LoginRequest{Email: "li@example.com", Password: "newpassword456"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, login.User.Role)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	svc, _, _, mr := setupAuthServiceWithRedis(t)

	// 未注册邮箱静默成功，且不落令牌
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mr.Keys())
}

func TestResetPasswordBadToken(t *testing.T) {
	svc, _, _, _ := setupAuthServiceWithRedis(t)

	err := svc.ResetPassword(context.Background(), "deadbeef", "newpassword456")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestUserIDSequenceAcrossRoles(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	resp, err := svc.RegisterCompany(&dto.RegisterCompanyRequest{
		CompanyName: "公司A",
		AdminName:   "老板",
		Email:       "boss@example.com",
		Password:    "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), resp.UserID)

	// 身份号跨三张角色表单调递增
	teamSvc := NewTeamService(repository.NewTeamRepository(db), repository.NewCompanyRepository(db), nil, &config.Config{})
	manager, err := teamSvc.CreateManager(resp.CompanyID, &dto.CreateManagerRequest{
		Name:     "王经理",
		Email:    "wang@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1002), manager.UserID)

	employee, err := teamSvc.CreateEmployee(resp.CompanyID, &dto.CreateEmployeeRequest{
		Name:     "小李",
		Email:    "li@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1003), employee.UserID)
}
