package user

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE"`
}

type AssignManagerRequest struct {
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
}

type UserResponse struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	FullName           string  `json:"full_name"`
	Role               string  `json:"role"`
	ManagerID          *string `json:"manager_id,omitempty"`
	ManagerName        string  `json:"manager_name,omitempty"`
	AnnualLeaveBalance int     `json:"annual_leave_balance"`
	SickLeaveBalance   int     `json:"sick_leave_balance"`
}
