package rbac_test

import (
	"testing"

	"leavedesk/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func newService(t *testing.T) rbac.Service {
	t.Helper()
	enforcer, err := rbac.NewEnforcer()
	assert.NoError(t, err)
	return rbac.NewService(enforcer)
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newService(t)

	cases := []struct {
		name     string
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{"employee creates leave", rbac.RoleEmployee, rbac.ResourceLeave, rbac.ActionCreate, true},
		{"employee cancels leave", rbac.RoleEmployee, rbac.ResourceLeave, rbac.ActionCancel, true},
		{"employee cannot decide", rbac.RoleEmployee, rbac.ResourceLeave, rbac.ActionDecide, false},
		{"employee cannot delete", rbac.RoleEmployee, rbac.ResourceLeave, rbac.ActionDelete, false},
		{"manager decides leave", rbac.RoleManager, rbac.ResourceLeave, rbac.ActionDecide, true},
		{"manager inherits employee create", rbac.RoleManager, rbac.ResourceLeave, rbac.ActionCreate, true},
		{"manager cannot manage leave types", rbac.RoleManager, rbac.ResourceLeaveType, rbac.ActionManage, false},
		{"admin decides leave", rbac.RoleAdmin, rbac.ResourceLeave, rbac.ActionDecide, true},
		{"admin deletes leave", rbac.RoleAdmin, rbac.ResourceLeave, rbac.ActionDelete, true},
		{"admin manages leave types", rbac.RoleAdmin, rbac.ResourceLeaveType, rbac.ActionManage, true},
		{"unknown role denied", "GUEST", rbac.ResourceLeave, rbac.ActionRead, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := svc.Enforce(tc.role, tc.resource, tc.action)
			assert.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}
