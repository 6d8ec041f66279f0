package report

type SummaryResponse struct {
	UserID         string `json:"user_id"`
	Year           int    `json:"year"`
	ApprovedDays   int    `json:"approved_days"`
	ApprovedCount  int    `json:"approved_count"`
	RejectedCount  int    `json:"rejected_count"`
	CancelledCount int    `json:"cancelled_count"`
}
