package events

import "time"

const (
	TopicLeaveDecided = "leavedesk.leave.decided"

	EventTypeLeaveApproved  = "leave.approved"
	EventTypeLeaveRejected  = "leave.rejected"
	EventTypeLeaveCancelled = "leave.cancelled"

	AggregateLeaveRequest = "leave_request"
)

// LeaveDecided is published once per terminal transition of a leave
// request, through the transactional outbox.
type LeaveDecided struct {
	RequestID   string    `json:"request_id"`
	UserID      string    `json:"user_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	Status      string    `json:"status"`
	TotalDays   int       `json:"total_days"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	DecidedBy   *string   `json:"decided_by,omitempty"`
	DecidedAt   time.Time `json:"decided_at"`
}
