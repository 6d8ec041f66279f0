package leavetype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryAnnual = "ANNUAL"
	CategorySick   = "SICK"
	CategoryOther  = "OTHER"
)

type LeaveType struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Category string    `gorm:"type:varchar(20);not null;default:'OTHER'"`

	// RequiresApproval gates the self-approval policy; DeductsBalance decides
	// whether approval touches the owner's balance columns.
	RequiresApproval bool `gorm:"not null;default:true"`
	DeductsBalance   bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
