package pipeline

import (
	"github.com/qs3c/leadcrm_go_server/internal/model"
)

// Roster 把经理/员工列表转成 O(1) 查找表，
// 解析上千条线索/通话的归属时避免反复扫数组。
// 键冲突时后写覆盖（租户数据正常时不会出现）。
type Roster struct {
	ManagerByID      map[int64]*model.Manager
	ManagerByUserID  map[int64]*model.Manager
	EmployeeByID     map[int64]*model.Employee
	EmployeeByUserID map[int64]*model.Employee
}

// BuildRoster 构建查找表
func BuildRoster(managers []*model.Manager, employees []*model.Employee) *Roster {
	r := &Roster{
		ManagerByID:      make(map[int64]*model.Manager, len(managers)),
		ManagerByUserID:  make(map[int64]*model.Manager, len(managers)),
		EmployeeByID:     make(map[int64]*model.Employee, len(employees)),
		EmployeeByUserID: make(map[int64]*model.Employee, len(employees)),
	}

	for _, m := range managers {
		r.ManagerByID[m.ID] = m
		r.ManagerByUserID[m.UserID] = m
	}
	for _, e := range employees {
		r.EmployeeByID[e.ID] = e
		r.EmployeeByUserID[e.UserID] = e
	}

	return r
}

// Owner 归属解析结果。两者都为 nil 表示未分配。
type Owner struct {
	Manager  *model.Manager
	Employee *model.Employee
}

// Unassigned 是否未解析出归属
func (o Owner) Unassigned() bool {
	return o.Manager == nil && o.Employee == nil
}

// Name 展示用归属名
func (o Owner) Name() string {
	if o.Manager != nil {
		return o.Manager.Name
	}
	if o.Employee != nil {
		return o.Employee.Name
	}
	return "Unassigned"
}

// ResolveOwner 按固定优先级解析线索/通话的归属。
//
// 同一外键列在系统演进中先后存过行 ID 和 user_id，
// 这里的查找顺序是对存量数据的兼容约定，调整顺序会
// 悄悄改变老记录的归属判定，禁止"修正"：
//
//  1. assigned_to 有值：先当经理行 ID 查；查不到当员工 user_id 查；
//     再查不到当员工行 ID 查。
//  2. 否则 user_id 有值：先当经理 user_id 查；查不到当员工 user_id 查。
//  3. 都没有：未分配。
//
// 任一步命中即返回，后续步骤不再尝试。
func (r *Roster) ResolveOwner(assignedTo, userID *int64) Owner {
	if assignedTo != nil {
		if m, ok := r.ManagerByID[*assignedTo]; ok {
			return Owner{Manager: m}
		}
		if e, ok := r.EmployeeByUserID[*assignedTo]; ok {
			return Owner{Employee: e}
		}
		if e, ok := r.EmployeeByID[*assignedTo]; ok {
			return Owner{Employee: e}
		}
		return Owner{}
	}

	if userID != nil {
		if m, ok := r.ManagerByUserID[*userID]; ok {
			return Owner{Manager: m}
		}
		if e, ok := r.EmployeeByUserID[*userID]; ok {
			return Owner{Employee: e}
		}
	}

	return Owner{}
}

// ManagerOf 解析员工所属经理。employee.manager_id 既可能存
// 经理行 ID 也可能存经理 user_id，先按行 ID 查再按 user_id 查。
func (r *Roster) ManagerOf(e *model.Employee) *model.Manager {
	if e == nil || e.ManagerID == nil {
		return nil
	}
	if m, ok := r.ManagerByID[*e.ManagerID]; ok {
		return m
	}
	if m, ok := r.ManagerByUserID[*e.ManagerID]; ok {
		return m
	}
	return nil
}
