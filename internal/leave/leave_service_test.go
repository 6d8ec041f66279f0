package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"leavedesk/internal/leave"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/leavetype"
	"leavedesk/internal/messaging/kafka"
	"leavedesk/internal/rbac"
	"leavedesk/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	createFn                  func(ctx context.Context, l *leave.LeaveRequest) error
	findByIDFn                func(ctx context.Context, id string) (*leave.LeaveRequest, error)
	findAllByUserFn           func(ctx context.Context, userID string) ([]leave.LeaveRequest, error)
	findPendingByManagerFn    func(ctx context.Context, managerID string) ([]leave.LeaveRequest, error)
	findAllFn                 func(ctx context.Context) ([]leave.LeaveRequest, error)
	findByIDForUpdateFn       func(ctx context.Context, id string) (*leave.LeaveRequest, error)
	updateStatusFromPendingFn func(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error)
	updateFieldsFromPendingFn func(ctx context.Context, l *leave.LeaveRequest) (bool, error)
	deleteFromPendingFn       func(ctx context.Context, id string) (bool, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindAllByUser(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	if f.findAllByUserFn != nil {
		return f.findAllByUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindPendingByManager(ctx context.Context, managerID string) ([]leave.LeaveRequest, error) {
	if f.findPendingByManagerFn != nil {
		return f.findPendingByManagerFn(ctx, managerID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindAll(ctx context.Context) ([]leave.LeaveRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByIDForUpdate(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLeaveRepository) UpdateStatusFromPending(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error) {
	if f.updateStatusFromPendingFn != nil {
		return f.updateStatusFromPendingFn(ctx, id, status, approvedBy, comments)
	}
	return true, nil
}

func (f *fakeLeaveRepository) UpdateFieldsFromPending(ctx context.Context, l *leave.LeaveRequest) (bool, error) {
	if f.updateFieldsFromPendingFn != nil {
		return f.updateFieldsFromPendingFn(ctx, l)
	}
	return true, nil
}

func (f *fakeLeaveRepository) DeleteFromPending(ctx context.Context, id string) (bool, error) {
	if f.deleteFromPendingFn != nil {
		return f.deleteFromPendingFn(ctx, id)
	}
	return true, nil
}

type fakeLedger struct {
	checkSufficientFn func(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error
	deductFn          func(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error
	deductCalls       int
}

func (f *fakeLedger) WithTx(tx *sql.Tx) leave.Ledger { return f }

func (f *fakeLedger) CheckSufficient(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error {
	if f.checkSufficientFn != nil {
		return f.checkSufficientFn(ctx, userID, lt, days)
	}
	return nil
}

func (f *fakeLedger) Deduct(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error {
	f.deductCalls++
	if f.deductFn != nil {
		return f.deductFn(ctx, userID, lt, days)
	}
	return nil
}

type fakeUserDirectory struct {
	findByIDFn func(ctx context.Context, id string) (*user.User, error)
}

func (f *fakeUserDirectory) FindByID(ctx context.Context, id string) (*user.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, errors.New("user directory not stubbed")
}

type fakeLeaveTypeCatalog struct {
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

func (f *fakeLeaveTypeCatalog) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, errors.New("leave type catalog not stubbed")
}

type fakeOutbox struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
	events   []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutbox) ListDispatchable(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type leaveServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service leave.Service
	repo    *fakeLeaveRepository
	ledger  *fakeLedger
	users   *fakeUserDirectory
	types   *fakeLeaveTypeCatalog
	outbox  *fakeOutbox
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeLeaveRepository{}
	ledger := &fakeLedger{}
	users := &fakeUserDirectory{}
	types := &fakeLeaveTypeCatalog{}
	outbox := &fakeOutbox{}
	svc := leave.NewService(db, repo, ledger, users, types, outbox)

	return &leaveServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		ledger:  ledger,
		users:   users,
		types:   types,
		outbox:  outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func annualType(id uuid.UUID) *leavetype.LeaveType {
	return &leavetype.LeaveType{
		ID:               id,
		Name:             "Annual Leave",
		Category:         leavetype.CategoryAnnual,
		RequiresApproval: true,
		DeductsBalance:   true,
	}
}

func pendingRequest(id, ownerID, typeID uuid.UUID, days int) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		ID:          id,
		UserID:      ownerID,
		LeaveTypeID: typeID,
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 1+days-1, 0, 0, 0, 0, time.UTC),
		TotalDays:   days,
		Reason:      "Family event",
		Status:      leave.StatusPending,
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	typeID := uuid.New()

	t.Run("success with inclusive day count", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			assert.Equal(t, typeID.String(), id)
			return annualType(typeID), nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return &user.User{ID: uuid.MustParse(actorID), AnnualLeaveBalance: 20}, nil
		}
		deps.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			assert.Equal(t, uuid.MustParse(actorID), l.UserID)
			assert.Equal(t, typeID, l.LeaveTypeID)
			assert.Equal(t, 3, l.TotalDays)
			assert.Equal(t, leave.StatusPending, l.Status)
			return nil
		}

		resp, err := deps.service.Create(ctx, actorID, leave.CreateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2024-12-25",
			EndDate:     "2024-12-27",
			Reason:      "Holidays",
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success single day counts as one", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return &user.User{ID: uuid.MustParse(actorID)}, nil
		}

		resp, err := deps.service.Create(ctx, actorID, leave.CreateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2026-05-10",
			EndDate:     "2026-05-10",
			Reason:      "Appointment",
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance persists nothing", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return &user.User{ID: uuid.MustParse(actorID), AnnualLeaveBalance: 2}, nil
		}
		deps.ledger.checkSufficientFn = func(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error {
			assert.Equal(t, 3, days)
			return leaveerrors.ErrInsufficientBalance
		}
		deps.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			t.Fatal("create must not be called when the balance check fails")
			return nil
		}

		_, err := deps.service.Create(ctx, actorID, leave.CreateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2026-03-01",
			EndDate:     "2026-03-03",
			Reason:      "Trip",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative leave type not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Create(ctx, actorID, leave.CreateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2026-03-01",
			EndDate:     "2026-03-03",
			Reason:      "Trip",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveTypeNotFound)
	})

	t.Run("negative inverted date range", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, actorID, leave.CreateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2026-03-05",
			EndDate:     "2026-03-01",
			Reason:      "Trip",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()
	managerID := uuid.New()
	typeID := uuid.New()

	owner := &user.User{ID: ownerID, Role: rbac.RoleEmployee, ManagerID: &managerID, AnnualLeaveBalance: 20}

	t.Run("success by direct manager deducts once", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 3), nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			assert.Equal(t, ownerID.String(), id)
			return owner, nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.repo.updateStatusFromPendingFn = func(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error) {
			assert.Equal(t, leave.StatusApproved, status)
			assert.NotNil(t, approvedBy)
			assert.Equal(t, managerID, *approvedBy)
			return true, nil
		}
		deps.ledger.deductFn = func(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error {
			assert.Equal(t, ownerID.String(), userID)
			assert.Equal(t, 3, days)
			return nil
		}

		comments := "Enjoy"
		resp, err := deps.service.Approve(ctx,
			leave.Actor{ID: managerID, Role: rbac.RoleManager},
			requestID.String(),
			leave.DecisionRequest{Comments: &comments},
		)

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Equal(t, 1, deps.ledger.deductCalls)
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, "leave.approved", deps.outbox.events[0].EventType)
		assert.Equal(t, requestID.String(), deps.outbox.events[0].AggregateID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative non-direct manager unauthorized", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 3), nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return owner, nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}

		_, err := deps.service.Approve(ctx,
			leave.Actor{ID: uuid.New(), Role: rbac.RoleManager},
			requestID.String(),
			leave.DecisionRequest{},
		)

		assert.ErrorIs(t, err, leaveerrors.ErrApprovalForbidden)
		assert.Equal(t, 0, deps.ledger.deductCalls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		decided := pendingRequest(requestID, ownerID, typeID, 3)
		decided.Status = leave.StatusApproved
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return decided, nil
		}

		_, err := deps.service.Approve(ctx,
			leave.Actor{ID: managerID, Role: rbac.RoleManager},
			requestID.String(),
			leave.DecisionRequest{},
		)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Equal(t, 0, deps.ledger.deductCalls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative concurrent loser gets invalid state", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 3), nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return owner, nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		// The row is no longer PENDING by the time the conditional update runs.
		deps.repo.updateStatusFromPendingFn = func(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Approve(ctx,
			leave.Actor{ID: uuid.New(), Role: rbac.RoleAdmin},
			requestID.String(),
			leave.DecisionRequest{},
		)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Equal(t, 0, deps.ledger.deductCalls)
		assert.Empty(t, deps.outbox.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return nil, sql.ErrNoRows
		}

		_, err := deps.service.Approve(ctx,
			leave.Actor{ID: managerID, Role: rbac.RoleManager},
			requestID.String(),
			leave.DecisionRequest{},
		)

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()
	typeID := uuid.New()
	adminID := uuid.New()

	t.Run("success by admin leaves balance untouched", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 3), nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return &user.User{ID: ownerID, Role: rbac.RoleEmployee}, nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.repo.updateStatusFromPendingFn = func(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error) {
			assert.Equal(t, leave.StatusRejected, status)
			assert.Equal(t, adminID, *approvedBy)
			return true, nil
		}

		resp, err := deps.service.Reject(ctx,
			leave.Actor{ID: adminID, Role: rbac.RoleAdmin},
			requestID.String(),
			leave.DecisionRequest{},
		)

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Equal(t, 0, deps.ledger.deductCalls)
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, "leave.rejected", deps.outbox.events[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()
	typeID := uuid.New()

	t.Run("success by owner", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 2), nil
		}
		deps.repo.updateStatusFromPendingFn = func(ctx context.Context, id, status string, approvedBy *uuid.UUID, comments *string) (bool, error) {
			assert.Equal(t, leave.StatusCancelled, status)
			assert.Nil(t, approvedBy)
			return true, nil
		}

		resp, err := deps.service.Cancel(ctx, ownerID.String(), requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
		assert.Nil(t, resp.ApprovedBy)
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, "leave.cancelled", deps.outbox.events[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not owner", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 2), nil
		}

		_, err := deps.service.Cancel(ctx, uuid.New().String(), requestID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrNotRequestOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative second cancel is invalid state", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		cancelled := pendingRequest(requestID, ownerID, typeID, 2)
		cancelled.Status = leave.StatusCancelled
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return cancelled, nil
		}

		_, err := deps.service.Cancel(ctx, ownerID.String(), requestID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.outbox.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Update(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()
	typeID := uuid.New()

	t.Run("success recomputes duration", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 2), nil
		}
		deps.repo.updateFieldsFromPendingFn = func(ctx context.Context, l *leave.LeaveRequest) (bool, error) {
			assert.Equal(t, 6, l.TotalDays)
			assert.Equal(t, "Extended trip", l.Reason)
			return true, nil
		}

		resp, err := deps.service.Update(ctx, ownerID.String(), requestID.String(), leave.UpdateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2024-03-15",
			EndDate:     "2024-03-20",
			Reason:      "Extended trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, 6, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not owner", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 2), nil
		}

		_, err := deps.service.Update(ctx, uuid.New().String(), requestID.String(), leave.UpdateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2026-03-01",
			EndDate:     "2026-03-02",
			Reason:      "Trip",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrNotRequestOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative decided request is immutable", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		approved := pendingRequest(requestID, ownerID, typeID, 2)
		approved.Status = leave.StatusApproved
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return approved, nil
		}

		_, err := deps.service.Update(ctx, ownerID.String(), requestID.String(), leave.UpdateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2026-03-01",
			EndDate:     "2026-03-02",
			Reason:      "Trip",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative new dates exceed balance", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualType(typeID), nil
		}
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 2), nil
		}
		deps.ledger.checkSufficientFn = func(ctx context.Context, userID string, lt *leavetype.LeaveType, days int) error {
			assert.Equal(t, 10, days)
			return leaveerrors.ErrInsufficientBalance
		}

		_, err := deps.service.Update(ctx, ownerID.String(), requestID.String(), leave.UpdateLeaveRequest{
			LeaveTypeID: typeID.String(),
			StartDate:   "2026-03-01",
			EndDate:     "2026-03-10",
			Reason:      "Long trip",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Delete(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()
	typeID := uuid.New()

	t.Run("success admin deletes pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return pendingRequest(requestID, ownerID, typeID, 2), nil
		}
		deps.repo.deleteFromPendingFn = func(ctx context.Context, id string) (bool, error) {
			assert.Equal(t, requestID.String(), id)
			return true, nil
		}

		err := deps.service.Delete(ctx, leave.Actor{ID: uuid.New(), Role: rbac.RoleAdmin}, requestID.String())

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative non-admin", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Delete(ctx, leave.Actor{ID: ownerID, Role: rbac.RoleManager}, requestID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrAdminOnly)
	})

	t.Run("negative non-pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		approved := pendingRequest(requestID, ownerID, typeID, 2)
		approved.Status = leave.StatusApproved
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return approved, nil
		}

		err := deps.service.Delete(ctx, leave.Actor{ID: uuid.New(), Role: rbac.RoleAdmin}, requestID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_GetByID(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()
	managerID := uuid.New()
	typeID := uuid.New()

	withOwner := pendingRequest(requestID, ownerID, typeID, 2)
	withOwner.Owner = &leave.RequestOwner{ID: ownerID, FullName: "Dina Putri", ManagerID: &managerID}

	t.Run("success owner reads own request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return withOwner, nil
		}

		resp, err := deps.service.GetByID(ctx, leave.Actor{ID: ownerID, Role: rbac.RoleEmployee}, requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, requestID.String(), resp.ID)
		assert.Equal(t, "Dina Putri", resp.OwnerName)
	})

	t.Run("success direct manager reads report request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return withOwner, nil
		}

		_, err := deps.service.GetByID(ctx, leave.Actor{ID: managerID, Role: rbac.RoleManager}, requestID.String())

		assert.NoError(t, err)
	})

	t.Run("negative unrelated employee denied", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return withOwner, nil
		}

		_, err := deps.service.GetByID(ctx, leave.Actor{ID: uuid.New(), Role: rbac.RoleEmployee}, requestID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrApprovalForbidden)
	})
}
