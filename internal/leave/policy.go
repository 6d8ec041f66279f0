package leave

import (
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/leavetype"
	"leavedesk/internal/rbac"
	"leavedesk/internal/user"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a lifecycle transition.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// ApprovalPolicy decides whether the resolved approver may approve or
// reject a request. Resolution happens per call; a policy is never cached
// across requests because the leave type changes the outcome.
type ApprovalPolicy interface {
	Name() string
	Authorize() error
}

type adminPolicy struct{}

func (adminPolicy) Name() string { return "admin" }
func (adminPolicy) Authorize() error { return nil }

type managerPolicy struct{}

func (managerPolicy) Name() string { return "manager" }
func (managerPolicy) Authorize() error { return nil }

type selfApprovalPolicy struct{}

func (selfApprovalPolicy) Name() string { return "self-approval" }
func (selfApprovalPolicy) Authorize() error { return nil }

type denyPolicy struct{}

func (denyPolicy) Name() string { return "deny" }
func (denyPolicy) Authorize() error {
	return leaveerrors.ErrApprovalForbidden
}

// ResolvePolicy selects the approval rule for one (approver, request) pair.
// Admin wins regardless of hierarchy; the manager rule only matches the
// owner's direct manager; self-approval only applies when the leave type
// does not require approval. Anything else is denied.
func ResolvePolicy(approver Actor, owner *user.User, lt *leavetype.LeaveType) ApprovalPolicy {
	switch {
	case approver.Role == rbac.RoleAdmin:
		return adminPolicy{}
	case owner.ManagerID != nil && *owner.ManagerID == approver.ID:
		return managerPolicy{}
	case approver.ID == owner.ID && !lt.RequiresApproval:
		return selfApprovalPolicy{}
	default:
		return denyPolicy{}
	}
}
