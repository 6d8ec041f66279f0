package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"leavedesk/internal/events"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/leavetype"
	"leavedesk/internal/messaging/kafka"
	"leavedesk/internal/rbac"
	"leavedesk/internal/shared/contextutil"
	"leavedesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// UserDirectory and LeaveTypeCatalog are the read-only collaborators the
// lifecycle engine needs from neighbouring modules.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type LeaveTypeCatalog interface {
	FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	GetMine(ctx context.Context, actorID string) ([]LeaveResponse, error)
	GetPendingForManager(ctx context.Context, managerID string) ([]LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor Actor, id string, req DecisionRequest) (LeaveResponse, error)
	Reject(ctx context.Context, actor Actor, id string, req DecisionRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, actorID, id string) (LeaveResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger Ledger
	users  UserDirectory
	types  LeaveTypeCatalog
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger Ledger,
	users UserDirectory,
	types LeaveTypeCatalog,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		users:  users,
		types:  types,
		outbox: outbox,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave request",
		zap.String("actor_id", actorID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	typeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveTypeID
	}
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create leave request date validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	lt, err := s.types.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		return LeaveResponse{}, err
	}

	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrOwnerNotFound
		}
		return LeaveResponse{}, err
	}

	totalDays := inclusiveDays(startDate, endDate)

	// Point-in-time guard: the balance is checked here, not reserved.
	if err := s.ledger.CheckSufficient(ctx, actorID, lt, totalDays); err != nil {
		s.logger.Warn("create leave request balance check failed",
			zap.String("actor_id", actorID),
			zap.Int("total_days", totalDays),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	l := &LeaveRequest{
		ID:          uuid.New(),
		UserID:      actorUUID,
		LeaveTypeID: typeUUID,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Status:      StatusPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave request begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave request commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave request success",
		zap.String("leave_id", l.ID.String()),
		zap.String("actor_id", actorID),
		zap.Int("total_days", totalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if !canRead(actor, l) {
		return LeaveResponse{}, leaveerrors.ErrApprovalForbidden
	}

	return mapToResponse(*l), nil
}

// canRead allows the owner, the owner's direct manager, and admins.
func canRead(actor Actor, l *LeaveRequest) bool {
	if actor.Role == rbac.RoleAdmin {
		return true
	}
	if l.UserID == actor.ID {
		return true
	}
	if l.Owner != nil && l.Owner.ManagerID != nil && *l.Owner.ManagerID == actor.ID {
		return true
	}
	return false
}

func (s *service) GetMine(ctx context.Context, actorID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return nil, leaveerrors.ErrInvalidActorID
	}

	leaves, err := s.repo.FindAllByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetPendingForManager(ctx context.Context, managerID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return nil, leaveerrors.ErrInvalidActorID
	}

	leaves, err := s.repo.FindPendingByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("update leave request",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}
	typeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveTypeID
	}
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	lt, err := s.types.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		return LeaveResponse{}, err
	}

	totalDays := inclusiveDays(startDate, endDate)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave request begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.UserID != actorUUID {
		return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if err := s.ledger.WithTx(tx).CheckSufficient(ctx, actorID, lt, totalDays); err != nil {
		return LeaveResponse{}, err
	}

	l.LeaveTypeID = typeUUID
	l.StartDate = startDate
	l.EndDate = endDate
	l.TotalDays = totalDays
	l.Reason = req.Reason

	ok, err := qtx.UpdateFieldsFromPending(ctx, l)
	if err != nil {
		s.logger.Error("update leave request persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave request commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.logger.Info("update leave request success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor Actor, id string, req DecisionRequest) (LeaveResponse, error) {
	return s.decide(ctx, actor, id, StatusApproved, req.Comments)
}

func (s *service) Reject(ctx context.Context, actor Actor, id string, req DecisionRequest) (LeaveResponse, error) {
	return s.decide(ctx, actor, id, StatusRejected, req.Comments)
}

// decide performs the single allowed transition away from PENDING for
// approve and reject. The row lock, the conditional status write, the
// balance deduction and the outbox record share one transaction.
func (s *service) decide(ctx context.Context, actor Actor, id, targetStatus string, comments *string) (LeaveResponse, error) {
	s.logger.Debug("decide leave request",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID.String()),
		zap.String("target_status", targetStatus),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave request begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("decide leave request not pending",
			zap.String("leave_id", id),
			zap.String("current_status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	owner, err := s.users.FindByID(ctx, l.UserID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrOwnerNotFound
		}
		return LeaveResponse{}, err
	}
	lt, err := s.types.FindByID(ctx, l.LeaveTypeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		return LeaveResponse{}, err
	}

	policy := ResolvePolicy(actor, owner, lt)
	if err := policy.Authorize(); err != nil {
		s.logger.Warn("decide leave request denied",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.ID.String()),
			zap.String("policy", policy.Name()),
		)
		return LeaveResponse{}, err
	}

	approverID := actor.ID
	ok, err := qtx.UpdateStatusFromPending(ctx, id, targetStatus, &approverID, comments)
	if err != nil {
		s.logger.Error("decide leave request persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !ok {
		// A concurrent caller won the transition after our read.
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if targetStatus == StatusApproved {
		if err := s.ledger.WithTx(tx).Deduct(ctx, l.UserID.String(), lt, l.TotalDays); err != nil {
			s.logger.Error("decide leave request deduct failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	now := time.Now().UTC()
	l.Status = targetStatus
	l.ApprovedBy = &approverID
	l.Comments = comments
	l.DecidedAt = &now

	if err := s.recordDecisionEvent(ctx, tx, l, decisionEventType(targetStatus)); err != nil {
		s.logger.Error("decide leave request outbox failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave request commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.logger.Info("decide leave request success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
		zap.String("policy", policy.Name()),
	)
	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave request",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave request begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.UserID != actorUUID {
		return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	ok, err := qtx.UpdateStatusFromPending(ctx, id, StatusCancelled, nil, nil)
	if err != nil {
		s.logger.Error("cancel leave request persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	l.Status = StatusCancelled
	l.ApprovedBy = nil
	l.Comments = nil
	l.DecidedAt = &now

	if err := s.recordDecisionEvent(ctx, tx, l, events.EventTypeLeaveCancelled); err != nil {
		s.logger.Error("cancel leave request outbox failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave request commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.logger.Info("cancel leave request success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.Role != rbac.RoleAdmin {
		return leaveerrors.ErrAdminOnly
	}
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	if l.Status != StatusPending {
		return leaveerrors.ErrInvalidStatusTransition
	}

	ok, err := qtx.DeleteFromPending(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return leaveerrors.ErrInvalidStatusTransition
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("delete leave request success",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

func (s *service) recordDecisionEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, eventType string) error {
	payload := events.LeaveDecided{
		RequestID:   l.ID.String(),
		UserID:      l.UserID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		Status:      l.Status,
		TotalDays:   l.TotalDays,
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		payload.DecidedBy = &v
	}
	if l.DecidedAt != nil {
		payload.DecidedAt = *l.DecidedAt
	}

	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		events.AggregateLeaveRequest,
		l.ID.String(),
		eventType,
		events.TopicLeaveDecided,
		payload,
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func decisionEventType(status string) string {
	if status == StatusApproved {
		return events.EventTypeLeaveApproved
	}
	return events.EventTypeLeaveRejected
}

// inclusiveDays counts both endpoints, so a single-day request is 1.
func inclusiveDays(startDate, endDate time.Time) int {
	return int(endDate.Sub(startDate).Hours()/24) + 1
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		UserID:      l.UserID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		TotalDays:   l.TotalDays,
		Reason:      l.Reason,
		Status:      l.Status,
		Comments:    l.Comments,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
	if l.Owner != nil {
		resp.OwnerName = l.Owner.FullName
	}
	if l.LeaveType != nil {
		resp.LeaveTypeName = l.LeaveType.Name
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
