package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"leavedesk/internal/events"
	"leavedesk/internal/leave"
	reporterrors "leavedesk/internal/report/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ApplyDecision(ctx context.Context, ev events.LeaveDecided) error
	GetUserSummary(ctx context.Context, userID string, year int) (SummaryResponse, error)
	GetAll(ctx context.Context, year int) ([]SummaryResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// ApplyDecision folds one terminal transition into the per-year usage row.
// The processed-request guard and the counter update commit together, so a
// redelivered event cannot double count.
func (s *service) ApplyDecision(ctx context.Context, ev events.LeaveDecided) error {
	year := usageYear(ev)

	var approvedDays, approved, rejected, cancelled int
	switch ev.Status {
	case leave.StatusApproved:
		approvedDays = ev.TotalDays
		approved = 1
	case leave.StatusRejected:
		rejected = 1
	case leave.StatusCancelled:
		cancelled = 1
	default:
		s.logger.Warn("decision event with unknown status skipped",
			zap.String("request_id", ev.RequestID),
			zap.String("status", ev.Status),
		)
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	fresh, err := qtx.MarkProcessed(ctx, ev.RequestID)
	if err != nil {
		return err
	}
	if !fresh {
		s.logger.Debug("decision event already applied",
			zap.String("request_id", ev.RequestID),
		)
		return nil
	}

	if err := qtx.Apply(ctx, ev.UserID, year, approvedDays, approved, rejected, cancelled); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("decision applied to usage report",
		zap.String("request_id", ev.RequestID),
		zap.String("user_id", ev.UserID),
		zap.Int("year", year),
		zap.String("status", ev.Status),
	)
	return nil
}

func (s *service) GetUserSummary(ctx context.Context, userID string, year int) (SummaryResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return SummaryResponse{}, reporterrors.ErrInvalidUserID
	}
	if year < 1000 || year > 9999 {
		return SummaryResponse{}, reporterrors.ErrInvalidYear
	}

	rep, err := s.repo.FindByUserYear(ctx, userID, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No decisions yet is a valid, empty summary.
			return SummaryResponse{UserID: userID, Year: year}, nil
		}
		return SummaryResponse{}, err
	}
	return mapToSummary(*rep), nil
}

func (s *service) GetAll(ctx context.Context, year int) ([]SummaryResponse, error) {
	if year < 1000 || year > 9999 {
		return nil, reporterrors.ErrInvalidYear
	}

	reports, err := s.repo.FindAllByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	resp := make([]SummaryResponse, len(reports))
	for i, rep := range reports {
		resp[i] = mapToSummary(rep)
	}
	return resp, nil
}

// usageYear attributes usage to the leave period, not the decision date.
func usageYear(ev events.LeaveDecided) int {
	if t, err := time.Parse("2006-01-02", ev.StartDate); err == nil {
		return t.Year()
	}
	if !ev.DecidedAt.IsZero() {
		return ev.DecidedAt.Year()
	}
	return time.Now().UTC().Year()
}

func mapToSummary(rep LeaveUsageReport) SummaryResponse {
	return SummaryResponse{
		UserID:         rep.UserID.String(),
		Year:           rep.Year,
		ApprovedDays:   rep.ApprovedDays,
		ApprovedCount:  rep.ApprovedCount,
		RejectedCount:  rep.RejectedCount,
		CancelledCount: rep.CancelledCount,
	}
}
