package leavetype

type CreateLeaveTypeRequest struct {
	Name             string `json:"name" binding:"required"`
	Category         string `json:"category" binding:"required,oneof=ANNUAL SICK OTHER"`
	RequiresApproval *bool  `json:"requires_approval" binding:"required"`
	DeductsBalance   *bool  `json:"deducts_balance" binding:"required"`
}

type UpdateLeaveTypeRequest struct {
	Name             string `json:"name" binding:"required"`
	Category         string `json:"category" binding:"required,oneof=ANNUAL SICK OTHER"`
	RequiresApproval *bool  `json:"requires_approval" binding:"required"`
	DeductsBalance   *bool  `json:"deducts_balance" binding:"required"`
}

type LeaveTypeResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	RequiresApproval bool   `json:"requires_approval"`
	DeductsBalance   bool   `json:"deducts_balance"`
}
