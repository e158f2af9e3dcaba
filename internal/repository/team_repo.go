package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

// listPageSize 全量拉取时的分页大小。来源系统单次查询最多返回
// 1000 行，超过的部分必须翻页绕过去，这里沿用同样的上限。
const listPageSize = 1000

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) CreateAdmin(admin *model.Admin) error {
	return r.db.Create(admin).Error
}

func (r *TeamRepository) GetAdminByEmail(email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("email = ?", email).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *TeamRepository) GetAdminByUserID(userID int64) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("user_id = ?", userID).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *TeamRepository) GetAdminByGithubID(githubID string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("github_id = ?", githubID).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *TeamRepository) UpdateAdminFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Admin{}).Where("id = ?", id).Updates(fields).Error
}

func (r *TeamRepository) CreateManager(manager *model.Manager) error {
	return r.db.Create(manager).Error
}

func (r *TeamRepository) GetManagerByID(companyID, id int64) (*model.Manager, error) {
	var manager model.Manager
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&manager).Error
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *TeamRepository) GetManagerByEmail(email string) (*model.Manager, error) {
	var manager model.Manager
	err := r.db.Where("email = ?", email).First(&manager).Error
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *TeamRepository) UpdateManagerFields(companyID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Manager{}).
		Where("company_id = ? AND id = ?", companyID, id).Updates(fields).Error
}

func (r *TeamRepository) DeleteManager(companyID, id int64) error {
	return r.db.Where("company_id = ? AND id = ?", companyID, id).
		Delete(&model.Manager{}).Error
}

// ListManagers 拉取租户全部经理，翻页绕过单次查询上限
func (r *TeamRepository) ListManagers(companyID int64) ([]*model.Manager, error) {
	var all []*model.Manager
	for offset := 0; ; offset += listPageSize {
		var page []*model.Manager
		err := r.db.Where("company_id = ?", companyID).
			Order("id").Offset(offset).Limit(listPageSize).Find(&page).Error
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
	}
}

func (r *TeamRepository) CreateEmployee(employee *model.Employee) error {
	return r.db.Create(employee).Error
}

func (r *TeamRepository) GetEmployeeByID(companyID, id int64) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *TeamRepository) GetEmployeeByEmail(email string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.Where("email = ?", email).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *TeamRepository) UpdateEmployeeFields(companyID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Employee{}).
		Where("company_id = ? AND id = ?", companyID, id).Updates(fields).Error
}

func (r *TeamRepository) DeleteEmployee(companyID, id int64) error {
	return r.db.Where("company_id = ? AND id = ?", companyID, id).
		Delete(&model.Employee{}).Error
}

// ListEmployees 拉取租户全部员工，翻页绕过单次查询上限
func (r *TeamRepository) ListEmployees(companyID int64) ([]*model.Employee, error) {
	var all []*model.Employee
	for offset := 0; ; offset += listPageSize {
		var page []*model.Employee
		err := r.db.Where("company_id = ?", companyID).
			Order("id").Offset(offset).Limit(listPageSize).Find(&page).Error
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
	}
}

// CountEmployeesOfManager 统计挂在某经理名下的员工数。
// manager_id 列既可能存经理行 ID 也可能存经理 user_id，两种都算。
func (r *TeamRepository) CountEmployeesOfManager(companyID int64, manager *model.Manager) (int64, error) {
	var count int64
	err := r.db.Model(&model.Employee{}).
		Where("company_id = ? AND (manager_id = ? OR manager_id = ?)",
			companyID, manager.ID, manager.UserID).
		Count(&count).Error
	return count, err
}

// EmailTakenInRole 同角色下邮箱是否已占用。excludeID 排除自己（更新场景）
func (r *TeamRepository) EmailTakenInRole(companyID int64, role, email string, excludeID int64) (bool, error) {
	var count int64
	var err error
	switch role {
	case model.RoleManager:
		err = r.db.Model(&model.Manager{}).
			Where("company_id = ? AND email = ? AND id <> ?", companyID, email, excludeID).
			Count(&count).Error
	case model.RoleEmployee:
		err = r.db.Model(&model.Employee{}).
			Where("company_id = ? AND email = ? AND id <> ?", companyID, email, excludeID).
			Count(&count).Error
	default:
		err = r.db.Model(&model.Admin{}).
			Where("company_id = ? AND email = ? AND id <> ?", companyID, email, excludeID).
			Count(&count).Error
	}
	return count > 0, err
}

// MaxUserID 三张账号表里最大的 user_id，用于给新成员分配身份号
func (r *TeamRepository) MaxUserID() (int64, error) {
	var max int64
	for _, table := range []string{"admins", "managers", "employees"} {
		var m int64
		err := r.db.Table(table).Select("COALESCE(MAX(user_id), 0)").Scan(&m).Error
		if err != nil {
			return 0, err
		}
		if m > max {
			max = m
		}
	}
	return max, nil
}
