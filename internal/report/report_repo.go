package report

import (
	"context"
	"database/sql"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// MarkProcessed claims a decision event for this read model. It returns
	// false when the request id was already recorded, which makes replayed
	// Kafka messages a no-op.
	MarkProcessed(ctx context.Context, requestID string) (bool, error)
	Apply(ctx context.Context, userID string, year, approvedDays, approved, rejected, cancelled int) error
	FindByUserYear(ctx context.Context, userID string, year int) (*LeaveUsageReport, error)
	FindAllByYear(ctx context.Context, year int) ([]LeaveUsageReport, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) MarkProcessed(ctx context.Context, requestID string) (bool, error) {
	query := `
        INSERT INTO report_processed_requests (request_id)
        VALUES ($1)
        ON CONFLICT (request_id) DO NOTHING
    `

	res, err := r.execer().ExecContext(ctx, query, requestID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) Apply(ctx context.Context, userID string, year, approvedDays, approved, rejected, cancelled int) error {
	query := `
INSERT INTO leave_usage_reports (
	user_id, year, approved_days, approved_count, rejected_count, cancelled_count, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (user_id, year) DO UPDATE
SET
	approved_days = leave_usage_reports.approved_days + EXCLUDED.approved_days,
	approved_count = leave_usage_reports.approved_count + EXCLUDED.approved_count,
	rejected_count = leave_usage_reports.rejected_count + EXCLUDED.rejected_count,
	cancelled_count = leave_usage_reports.cancelled_count + EXCLUDED.cancelled_count,
	updated_at = NOW()
`

	_, err := r.execer().ExecContext(ctx, query, userID, year, approvedDays, approved, rejected, cancelled)
	return err
}

func (r *repository) FindByUserYear(ctx context.Context, userID string, year int) (*LeaveUsageReport, error) {
	query := `
SELECT user_id, year, approved_days, approved_count, rejected_count, cancelled_count, updated_at
FROM leave_usage_reports
WHERE user_id = $1 AND year = $2
`

	var rep LeaveUsageReport
	err := r.queryer().QueryRowContext(ctx, query, userID, year).Scan(
		&rep.UserID,
		&rep.Year,
		&rep.ApprovedDays,
		&rep.ApprovedCount,
		&rep.RejectedCount,
		&rep.CancelledCount,
		&rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *repository) FindAllByYear(ctx context.Context, year int) ([]LeaveUsageReport, error) {
	query := `
SELECT user_id, year, approved_days, approved_count, rejected_count, cancelled_count, updated_at
FROM leave_usage_reports
WHERE year = $1
ORDER BY approved_days DESC
`

	rows, err := r.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []LeaveUsageReport
	for rows.Next() {
		var rep LeaveUsageReport
		if err := rows.Scan(
			&rep.UserID,
			&rep.Year,
			&rep.ApprovedDays,
			&rep.ApprovedCount,
			&rep.RejectedCount,
			&rep.CancelledCount,
			&rep.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) queryer() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
