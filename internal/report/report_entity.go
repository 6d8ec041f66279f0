package report

import (
	"time"

	"github.com/google/uuid"
)

// LeaveUsageReport is a read model fed by decision events, one row per
// user and year.
type LeaveUsageReport struct {
	UserID         uuid.UUID
	Year           int
	ApprovedDays   int
	ApprovedCount  int
	RejectedCount  int
	CancelledCount int
	UpdatedAt      time.Time
}
