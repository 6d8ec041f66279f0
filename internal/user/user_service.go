package user

import (
	"context"
	"errors"

	"leavedesk/internal/rbac"
	usererrors "leavedesk/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetMe(ctx context.Context, userID string) (UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetReports(ctx context.Context, managerID string) ([]UserResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (UserResponse, error)
	AssignManager(ctx context.Context, id string, req AssignManagerRequest) (UserResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetMe(ctx context.Context, userID string) (UserResponse, error) {
	return s.GetByID(ctx, userID)
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(users), nil
}

func (s *service) GetReports(ctx context.Context, managerID string) ([]UserResponse, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	users, err := s.repo.FindByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(users), nil
}

func (s *service) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}
	switch req.Role {
	case rbac.RoleAdmin, rbac.RoleManager, rbac.RoleEmployee:
	default:
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	u.Role = req.Role
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("update role persist failed",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return UserResponse{}, err
	}

	s.logger.Info("user role updated",
		zap.String("user_id", id),
		zap.String("role", req.Role),
	)
	return mapToResponse(*u), nil
}

func (s *service) AssignManager(ctx context.Context, id string, req AssignManagerRequest) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	if req.ManagerID == nil || *req.ManagerID == "" {
		u.ManagerID = nil
		u.Manager = nil
	} else {
		managerID, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			return UserResponse{}, usererrors.ErrInvalidManagerID
		}
		if managerID == u.ID {
			return UserResponse{}, usererrors.ErrSelfManager
		}

		manager, err := s.repo.FindByID(ctx, managerID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return UserResponse{}, usererrors.ErrManagerNotFound
			}
			return UserResponse{}, err
		}
		if manager.Role != rbac.RoleManager && manager.Role != rbac.RoleAdmin {
			return UserResponse{}, usererrors.ErrManagerRoleRequired
		}

		u.ManagerID = &managerID
		u.Manager = &UserManager{ID: manager.ID, FullName: manager.FullName, Email: manager.Email}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("assign manager persist failed",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return UserResponse{}, err
	}

	s.logger.Info("user manager assigned",
		zap.String("user_id", id),
	)
	return mapToResponse(*u), nil
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:                 u.ID.String(),
		Email:              u.Email,
		FullName:           u.FullName,
		Role:               u.Role,
		AnnualLeaveBalance: u.AnnualLeaveBalance,
		SickLeaveBalance:   u.SickLeaveBalance,
	}
	if u.ManagerID != nil {
		v := u.ManagerID.String()
		resp.ManagerID = &v
	}
	if u.Manager != nil {
		resp.ManagerName = u.Manager.FullName
	}
	return resp
}

func mapToListResponse(users []User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp
}
