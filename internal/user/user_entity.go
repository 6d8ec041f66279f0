package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email    string    `gorm:"type:text;not null;uniqueIndex"`
	Password string    `gorm:"type:text;not null"`
	FullName string    `gorm:"type:varchar(255)"`
	Role     string    `gorm:"type:varchar(20);not null;default:'EMPLOYEE'"`

	// Self-referential; approval only ever walks one hop (user -> direct
	// manager), so no cycle check is done on assignment.
	ManagerID *uuid.UUID `gorm:"type:uuid;index"`

	// Balance columns are written exclusively by the leave balance ledger
	// inside an approval transaction.
	AnnualLeaveBalance int `gorm:"type:int;not null;default:0"`
	SickLeaveBalance   int `gorm:"type:int;not null;default:0"`

	IsActive  bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Manager *UserManager `gorm:"foreignKey:ManagerID"`
}

// UserManager is a minimal join projection of the manager row.
type UserManager struct {
	ID       uuid.UUID `gorm:"primaryKey"`
	FullName string    `gorm:"column:full_name"`
	Email    string    `gorm:"column:email"`
}

func (UserManager) TableName() string {
	return "users"
}
