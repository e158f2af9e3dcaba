package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/email"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/jwt"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/oauth"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/passreset"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrOldPasswordWrong   = errors.New("原密码错误")
	ErrGithubNotBound     = errors.New("该 GitHub 账号未绑定任何管理员")
	ErrResetTokenInvalid  = errors.New("重置链接无效或已过期")
)

type AuthService struct {
	teamRepo    *repository.TeamRepository
	companyRepo *repository.CompanyRepository
	email       *email.Service
	resetStore  *passreset.TokenStore
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
}

func NewAuthService(teamRepo *repository.TeamRepository, companyRepo *repository.CompanyRepository, emailSvc *email.Service, resetStore *passreset.TokenStore, cfg *config.Config) *AuthService {
	return &AuthService{
		teamRepo:    teamRepo,
		companyRepo: companyRepo,
		email:       emailSvc,
		resetStore:  resetStore,
		cfg:         cfg,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
	}
}

// RegisterCompany 开通租户：建公司、建管理员账号
func (s *AuthService) RegisterCompany(req *dto.RegisterCompanyRequest) (*dto.RegisterCompanyResponse, error) {
	if _, err := s.teamRepo.GetAdminByEmail(req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	company := &model.Company{
		Name:     req.CompanyName,
		Industry: req.Industry,
		Email:    req.Email,
	}
	if err := s.companyRepo.Create(company); err != nil {
		return nil, err
	}

	userID, err := s.nextUserID()
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	admin := &model.Admin{
		CompanyID:    company.ID,
		UserID:       userID,
		Name:         req.AdminName,
		Email:        req.Email,
		PasswordHash: &passwordStr,
	}
	if err := s.teamRepo.CreateAdmin(admin); err != nil {
		return nil, err
	}

	// 顺手落默认配置，后续读取就不会缺行
	if _, err := s.companyRepo.GetSettings(company.ID); err != nil {
		return nil, err
	}

	return &dto.RegisterCompanyResponse{
		CompanyID: company.ID,
		UserID:    admin.UserID,
	}, nil
}

// Login 三张角色表依次找邮箱，命中哪张就按哪个角色登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if admin, err := s.teamRepo.GetAdminByEmail(req.Email); err == nil {
		return s.loginAs(admin.UserID, admin.CompanyID, model.RoleAdmin,
			admin.Name, admin.Email, admin.PasswordHash, req.Password)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if manager, err := s.teamRepo.GetManagerByEmail(req.Email); err == nil {
		return s.loginAs(manager.UserID, manager.CompanyID, model.RoleManager,
			manager.Name, manager.Email, manager.PasswordHash, req.Password)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if employee, err := s.teamRepo.GetEmployeeByEmail(req.Email); err == nil {
		return s.loginAs(employee.UserID, employee.CompanyID, model.RoleEmployee,
			employee.Name, employee.Email, employee.PasswordHash, req.Password)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return nil, ErrInvalidCredentials
}

func (s *AuthService) loginAs(userID, companyID int64, role, name, email string, hash *string, password string) (*dto.LoginResponse, error) {
	if hash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(userID, companyID, role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	info := &dto.UserInfo{
		UserID:    userID,
		Name:      name,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
	}
	if company, err := s.companyRepo.GetByID(companyID); err == nil {
		info.CompanyName = company.Name
	}

	return &dto.LoginResponse{Token: token, User: info}, nil
}

// RequestPasswordReset 给邮箱发送重置链接。
// 邮箱没注册时静默成功，不给探测账号是否存在的机会。
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	data, err := s.findByEmail(emailAddr)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	token, err := s.resetStore.Generate(ctx, data)
	if err != nil {
		return err
	}

	// 邮件发送失败不阻塞请求，只记日志
	if s.email != nil {
		resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.Server.Host, token)
		go func() {
			if err := s.email.SendPasswordReset(emailAddr, resetLink); err != nil {
				log.Printf("send password reset email to %s failed: %v", emailAddr, err)
			}
		}()
	}

	return nil
}

// ResetPassword 用邮件令牌设置新密码。令牌一次性，用过即废
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	data, err := s.resetStore.Consume(ctx, token)
	if err != nil {
		return ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fields := map[string]interface{}{"password_hash": string(hashed)}

	switch data.Role {
	case model.RoleAdmin:
		admin, err := s.teamRepo.GetAdminByEmail(data.Email)
		if err != nil {
			return ErrUserNotFound
		}
		return s.teamRepo.UpdateAdminFields(admin.ID, fields)
	case model.RoleManager:
		manager, err := s.teamRepo.GetManagerByEmail(data.Email)
		if err != nil {
			return ErrUserNotFound
		}
		return s.teamRepo.UpdateManagerFields(manager.CompanyID, manager.ID, fields)
	case model.RoleEmployee:
		employee, err := s.teamRepo.GetEmployeeByEmail(data.Email)
		if err != nil {
			return ErrUserNotFound
		}
		return s.teamRepo.UpdateEmployeeFields(employee.CompanyID, employee.ID, fields)
	default:
		return ErrResetTokenInvalid
	}
}

// findByEmail 按登录同样的顺序在三张角色表里找邮箱
func (s *AuthService) findByEmail(emailAddr string) (*passreset.TokenData, error) {
	if admin, err := s.teamRepo.GetAdminByEmail(emailAddr); err == nil {
		return &passreset.TokenData{Role: model.RoleAdmin, UserID: admin.UserID, Email: admin.Email}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if manager, err := s.teamRepo.GetManagerByEmail(emailAddr); err == nil {
		return &passreset.TokenData{Role: model.RoleManager, UserID: manager.UserID, Email: manager.Email}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if employee, err := s.teamRepo.GetEmployeeByEmail(emailAddr); err == nil {
		return &passreset.TokenData{Role: model.RoleEmployee, UserID: employee.UserID, Email: employee.Email}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return nil, nil
}

// GetGithubAuthURL 生成 GitHub 授权跳转地址
func (s *AuthService) GetGithubAuthURL(ctx context.Context, store *oauth.StateStore, redirectURI string, adminUserID int64) (string, error) {
	state, err := store.GenerateState(ctx, &oauth.StateData{
		RedirectURI: redirectURI,
		AdminUserID: adminUserID,
	})
	if err != nil {
		return "", err
	}
	return s.githubOAuth.GetAuthURL(state), nil
}

// LoginWithGithub GitHub 回调：绑定流程给已登录管理员绑号，
// 登录流程按 github_id 找管理员签发 token
func (s *AuthService) LoginWithGithub(ctx context.Context, store *oauth.StateStore, state, code string) (*dto.LoginResponse, error) {
	data, err := store.ValidateState(ctx, state)
	if err != nil {
		return nil, err
	}

	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	ghUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	githubID := formatGithubID(ghUser.ID)

	// 绑定流程
	if data.AdminUserID != 0 {
		admin, err := s.teamRepo.GetAdminByUserID(data.AdminUserID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		if err := s.teamRepo.UpdateAdminFields(admin.ID, map[string]interface{}{
			"github_id": githubID,
		}); err != nil {
			return nil, err
		}
		return s.adminLoginResponse(admin)
	}

	// 登录流程
	admin, err := s.teamRepo.GetAdminByGithubID(githubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGithubNotBound
		}
		return nil, err
	}
	return s.adminLoginResponse(admin)
}

func (s *AuthService) adminLoginResponse(admin *model.Admin) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(admin.UserID, admin.CompanyID, model.RoleAdmin,
		s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	info := &dto.UserInfo{
		UserID:    admin.UserID,
		Name:      admin.Name,
		Email:     admin.Email,
		Role:      model.RoleAdmin,
		CompanyID: admin.CompanyID,
	}
	if company, err := s.companyRepo.GetByID(admin.CompanyID); err == nil {
		info.CompanyName = company.Name
	}

	return &dto.LoginResponse{Token: token, User: info}, nil
}

// nextUserID 分配新的身份号。身份号全局唯一，跨三张角色表
func (s *AuthService) nextUserID() (int64, error) {
	max, err := s.teamRepo.MaxUserID()
	if err != nil {
		return 0, err
	}
	if max < 1000 {
		max = 1000 // 起始段，避开历史导入数据的小 ID
	}
	return max + 1, nil
}

func formatGithubID(id int64) string {
	return strconv.FormatInt(id, 10)
}
