package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/leavetype"
)

// Ledger guards the per-user balance columns. Deduct must run inside the
// same transaction as the status write it is tied to, so callers hand the
// ledger their open transaction via WithTx.
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	CheckSufficient(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error
	Deduct(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error
}

type ledger struct {
	db *sql.DB
	tx *sql.Tx
}

func NewLedger(db *sql.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{db: l.db, tx: tx}
}

// CheckSufficient is a point-in-time read, not a reservation. The balance
// can still change between creation and approval.
func (l *ledger) CheckSufficient(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error {
	if !lt.DeductsBalance {
		return nil
	}
	column, ok := balanceColumn(lt.Category)
	if !ok {
		// OTHER has no matching balance column and never blocks.
		return nil
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND deleted_at IS NULL`, column)

	var balance int
	err := l.execer().QueryRowContext(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leaveerrors.ErrOwnerNotFound
		}
		return err
	}

	if balance < days {
		return leaveerrors.ErrInsufficientBalance
	}
	return nil
}

func (l *ledger) Deduct(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error {
	if !lt.DeductsBalance {
		return nil
	}
	column, ok := balanceColumn(lt.Category)
	if !ok {
		return nil
	}

	query := fmt.Sprintf(`
UPDATE users
SET
	%s = %s - $2,
	updated_at = NOW()
WHERE id = $1
`, column, column)

	res, err := l.execer().ExecContext(ctx, query, userID, days)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return leaveerrors.ErrOwnerNotFound
	}
	return nil
}

// balanceColumn maps a leave type category to the users column it draws
// from. The column name is taken from this fixed switch, never from input.
func balanceColumn(category string) (string, bool) {
	switch category {
	case leavetype.CategoryAnnual:
		return "annual_leave_balance", true
	case leavetype.CategorySick:
		return "sick_leave_balance", true
	default:
		return "", false
	}
}

func (l *ledger) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if l.tx != nil {
		return l.tx
	}
	return l.db
}
