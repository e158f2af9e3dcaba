package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

func ptr(v int64) *int64 {
	return &v
}

func testRoster() *Roster {
	managers := []*model.Manager{
		{ID: 10, UserID: 1010, Name: "经理A"},
		{ID: 11, UserID: 1011, Name: "经理B"},
	}
	employees := []*model.Employee{
		{ID: 20, UserID: 2020, Name: "员工A", ManagerID: ptr(10)},
		{ID: 21, UserID: 2021, Name: "员工B", ManagerID: ptr(1011)}, // manager_id 存的是经理 user_id
	}
	return BuildRoster(managers, employees)
}

func TestBuildRoster(t *testing.T) {
	r := testRoster()

	assert.Len(t, r.ManagerByID, 2)
	assert.Len(t, r.ManagerByUserID, 2)
	assert.Len(t, r.EmployeeByID, 2)
	assert.Len(t, r.EmployeeByUserID, 2)
	assert.Equal(t, "经理A", r.ManagerByID[10].Name)
	assert.Equal(t, "员工B", r.EmployeeByUserID[2021].Name)
}

func TestBuildRoster_DuplicateKeyLastWins(t *testing.T) {
	managers := []*model.Manager{
		{ID: 10, UserID: 1010, Name: "旧记录"},
		{ID: 10, UserID: 1010, Name: "新记录"},
	}
	r := BuildRoster(managers, nil)

	assert.Equal(t, "新记录", r.ManagerByID[10].Name)
	assert.Equal(t, "新记录", r.ManagerByUserID[1010].Name)
}

func TestResolveOwner_AssignedToPrecedence(t *testing.T) {
	r := testRoster()

	t.Run("assigned_to as manager row id", func(t *testing.T) {
		owner := r.ResolveOwner(ptr(10), nil)

		require.NotNil(t, owner.Manager)
		assert.Nil(t, owner.Employee)
		assert.Equal(t, int64(10), owner.Manager.ID)
	})

	t.Run("assigned_to as employee user_id", func(t *testing.T) {
		owner := r.ResolveOwner(ptr(2020), nil)

		require.NotNil(t, owner.Employee)
		assert.Nil(t, owner.Manager)
		assert.Equal(t, int64(2020), owner.Employee.UserID)
	})

	t.Run("assigned_to as employee row id", func(t *testing.T) {
		owner := r.ResolveOwner(ptr(21), nil)

		require.NotNil(t, owner.Employee)
		assert.Equal(t, int64(21), owner.Employee.ID)
	})

	t.Run("assigned_to short-circuits user_id", func(t *testing.T) {
		// assigned_to 指向有效经理、user_id 指向另一个有效员工时，
		// 必须命中经理，第 2 步不再尝试
		owner := r.ResolveOwner(ptr(10), ptr(2021))

		require.NotNil(t, owner.Manager)
		assert.Nil(t, owner.Employee)
		assert.Equal(t, int64(10), owner.Manager.ID)
	})

	t.Run("assigned_to dangling does not fall through to user_id", func(t *testing.T) {
		// assigned_to 有值但三种解释都查不到时按未分配处理，
		// 不回退到 user_id 分支
		owner := r.ResolveOwner(ptr(99999), ptr(2021))

		assert.True(t, owner.Unassigned())
	})
}

func TestResolveOwner_UserIDFallback(t *testing.T) {
	r := testRoster()

	t.Run("user_id as manager user_id", func(t *testing.T) {
		owner := r.ResolveOwner(nil, ptr(1011))

		require.NotNil(t, owner.Manager)
		assert.Equal(t, int64(11), owner.Manager.ID)
	})

	t.Run("user_id as employee user_id", func(t *testing.T) {
		owner := r.ResolveOwner(nil, ptr(2020))

		require.NotNil(t, owner.Employee)
		assert.Equal(t, int64(20), owner.Employee.ID)
	})

	t.Run("unknown user_id", func(t *testing.T) {
		owner := r.ResolveOwner(nil, ptr(404))

		assert.True(t, owner.Unassigned())
		assert.Equal(t, "Unassigned", owner.Name())
	})
}

func TestResolveOwner_NothingSet(t *testing.T) {
	r := testRoster()

	owner := r.ResolveOwner(nil, nil)

	assert.True(t, owner.Unassigned())
	assert.Equal(t, "Unassigned", owner.Name())
}

func TestManagerOf(t *testing.T) {
	r := testRoster()

	t.Run("manager_id as row id", func(t *testing.T) {
		e := r.EmployeeByID[20]
		m := r.ManagerOf(e)

		require.NotNil(t, m)
		assert.Equal(t, int64(10), m.ID)
	})

	t.Run("manager_id as user_id", func(t *testing.T) {
		e := r.EmployeeByID[21]
		m := r.ManagerOf(e)

		require.NotNil(t, m)
		assert.Equal(t, int64(11), m.ID)
	})

	t.Run("no manager", func(t *testing.T) {
		assert.Nil(t, r.ManagerOf(&model.Employee{ID: 30}))
		assert.Nil(t, r.ManagerOf(nil))
	})
}
