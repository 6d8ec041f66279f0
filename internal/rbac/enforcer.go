package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// rbacModel is a standard RBAC model with role inheritance. Policies are
// static (roles are a fixed enum), so no storage adapter is needed.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// [role, resource, action]
var defaultPolicies = [][]string{
	{RoleEmployee, ResourceLeave, ActionCreate},
	{RoleEmployee, ResourceLeave, ActionRead},
	{RoleEmployee, ResourceLeave, ActionUpdate},
	{RoleEmployee, ResourceLeave, ActionCancel},
	{RoleEmployee, ResourceLeaveType, ActionRead},
	{RoleEmployee, ResourceReport, ActionRead},

	{RoleManager, ResourceLeave, ActionDecide},
	{RoleManager, ResourceUser, ActionReadReports},

	{RoleAdmin, ResourceLeave, ActionList},
	{RoleAdmin, ResourceLeave, ActionDelete},
	{RoleAdmin, ResourceReport, ActionList},
	{RoleAdmin, ResourceLeaveType, ActionManage},
	{RoleAdmin, ResourceUser, ActionManage},
}

// [role, inherited role]
var roleInheritance = [][]string{
	{RoleManager, RoleEmployee},
	{RoleAdmin, RoleManager},
}

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range defaultPolicies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range roleInheritance {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return e, nil
}
