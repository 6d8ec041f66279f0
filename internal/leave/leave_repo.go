package leave

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
	FindPendingByManager(ctx context.Context, managerID string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)

	// Transactional lifecycle mutations. FindByIDForUpdate takes a row lock;
	// the conditional updates return false when the row was no longer
	// PENDING, which is how a losing concurrent caller is detected.
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	UpdateStatusFromPending(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error)
	UpdateFieldsFromPending(ctx context.Context, l *LeaveRequest) (bool, error)
	DeleteFromPending(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	query := `
        INSERT INTO leave_requests (
            id, user_id, leave_type_id, start_date, end_date, total_days, reason, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	exec := r.execer()
	_, err := exec.ExecContext(
		ctx, query,
		l.ID, l.UserID, l.LeaveTypeID,
		l.StartDate, l.EndDate, l.TotalDays, l.Reason, l.Status,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("LeaveType").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindPendingByManager(ctx context.Context, managerID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("LeaveType").
		Joins("JOIN users ON users.id = leave_requests.user_id").
		Where("users.manager_id = ?", managerID).
		Where("leave_requests.status = ?", StatusPending).
		Order("leave_requests.created_at ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("LeaveType").
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	query := `
SELECT
	id,
	user_id,
	leave_type_id,
	start_date,
	end_date,
	total_days,
	reason,
	status,
	approved_by,
	comments,
	decided_at,
	created_at,
	updated_at
FROM leave_requests
WHERE id = $1
FOR UPDATE
`

	var l LeaveRequest
	err := r.execer().QueryRowContext(ctx, query, id).Scan(
		&l.ID,
		&l.UserID,
		&l.LeaveTypeID,
		&l.StartDate,
		&l.EndDate,
		&l.TotalDays,
		&l.Reason,
		&l.Status,
		&l.ApprovedBy,
		&l.Comments,
		&l.DecidedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) UpdateStatusFromPending(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error) {
	query := `
UPDATE leave_requests
SET
	status = $2,
	approved_by = $3,
	comments = $4,
	decided_at = NOW(),
	updated_at = NOW()
WHERE id = $1 AND status = $5
`

	res, err := r.execer().ExecContext(ctx, query, id, status, approvedBy, comments, StatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) UpdateFieldsFromPending(ctx context.Context, l *LeaveRequest) (bool, error) {
	query := `
UPDATE leave_requests
SET
	leave_type_id = $2,
	start_date = $3,
	end_date = $4,
	total_days = $5,
	reason = $6,
	updated_at = NOW()
WHERE id = $1 AND status = $7
`

	res, err := r.execer().ExecContext(
		ctx, query,
		l.ID, l.LeaveTypeID, l.StartDate, l.EndDate, l.TotalDays, l.Reason, StatusPending,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) DeleteFromPending(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM leave_requests WHERE id = $1 AND status = $2`

	res, err := r.execer().ExecContext(ctx, query, id, StatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
