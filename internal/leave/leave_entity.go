package leave

import (
	"time"

	"github.com/google/uuid"
)

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_user"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    string    `gorm:"type:text"`

	// PENDING is the only state a request can leave; the other three are
	// terminal. ApprovedBy is set only for APPROVED and REJECTED.
	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_status"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	Comments   *string    `gorm:"type:text"`
	DecidedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Owner     *RequestOwner     `gorm:"foreignKey:UserID;references:ID"`
	LeaveType *RequestLeaveType `gorm:"foreignKey:LeaveTypeID;references:ID"`
}

// RequestOwner is a minimal join projection of the owning user row.
type RequestOwner struct {
	ID        uuid.UUID  `gorm:"primaryKey"`
	FullName  string     `gorm:"column:full_name"`
	Email     string     `gorm:"column:email"`
	ManagerID *uuid.UUID `gorm:"column:manager_id"`
}

func (RequestOwner) TableName() string {
	return "users"
}

// RequestLeaveType is a minimal join projection of the leave type row.
type RequestLeaveType struct {
	ID       uuid.UUID `gorm:"primaryKey"`
	Name     string    `gorm:"column:name"`
	Category string    `gorm:"column:category"`
}

func (RequestLeaveType) TableName() string {
	return "leave_types"
}
