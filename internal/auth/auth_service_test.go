package auth

import (
	"context"
	"testing"

	autherrors "leavedesk/internal/auth/errors"
	"leavedesk/internal/rbac"
	"leavedesk/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn     func(ctx context.Context, u *user.User) error
	getByEmailFn func(ctx context.Context, email string) (*user.User, error)
	getByIDFn    func(ctx context.Context, id string) (*user.User, error)
}

func (f *fakeRepo) Create(ctx context.Context, u *user.User) error {
	return f.createFn(ctx, u)
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	return f.getByIDFn(ctx, id)
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var created *user.User
		repo := &fakeRepo{
			createFn: func(ctx context.Context, u *user.User) error {
				created = u
				return nil
			},
		}
		svc := NewService(repo)

		resp, err := svc.Register(context.Background(), RegisterRequest{
			Email:    "dina@example.com",
			Password: "supersecret",
			FullName: "Dina Putri",
		})

		assert.NoError(t, err)
		assert.Equal(t, "dina@example.com", resp.Email)
		assert.Equal(t, rbac.RoleEmployee, resp.Role)
		assert.NotNil(t, created)
		assert.NotEqual(t, "supersecret", created.Password)
		assert.Equal(t, 25, created.AnnualLeaveBalance)
		assert.Equal(t, 10, created.SickLeaveBalance)
		assert.True(t, created.IsActive)
	})

	t.Run("negative duplicate email", func(t *testing.T) {
		repo := &fakeRepo{
			createFn: func(ctx context.Context, u *user.User) error {
				return &pgconn.PgError{Code: "23505"}
			},
		}
		svc := NewService(repo)

		_, err := svc.Register(context.Background(), RegisterRequest{
			Email:    "dina@example.com",
			Password: "supersecret",
			FullName: "Dina Putri",
		})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	active := &user.User{
		ID:       uuid.New(),
		Email:    "dina@example.com",
		Password: hashPassword(t, "supersecret"),
		FullName: "Dina Putri",
		Role:     rbac.RoleEmployee,
		IsActive: true,
	}

	t.Run("success", func(t *testing.T) {
		repo := &fakeRepo{
			getByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
				return active, nil
			},
		}
		svc := NewService(repo)

		pair, resp, err := svc.Login(context.Background(), LoginRequest{
			Email:    "dina@example.com",
			Password: "supersecret",
		})

		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, active.ID.String(), resp.ID)

		claims, err := ParseToken(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, active.ID.String(), claims.UserID)
		assert.Equal(t, rbac.RoleEmployee, claims.Role)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("negative wrong password", func(t *testing.T) {
		repo := &fakeRepo{
			getByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
				return active, nil
			},
		}
		svc := NewService(repo)

		_, _, err := svc.Login(context.Background(), LoginRequest{
			Email:    "dina@example.com",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative unknown email", func(t *testing.T) {
		repo := &fakeRepo{
			getByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(repo)

		_, _, err := svc.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "supersecret",
		})

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative inactive user", func(t *testing.T) {
		inactive := *active
		inactive.IsActive = false
		repo := &fakeRepo{
			getByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
				return &inactive, nil
			},
		}
		svc := NewService(repo)

		_, _, err := svc.Login(context.Background(), LoginRequest{
			Email:    "dina@example.com",
			Password: "supersecret",
		})

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	u := &user.User{
		ID:       uuid.New(),
		Email:    "dina@example.com",
		Role:     rbac.RoleEmployee,
		IsActive: true,
	}

	t.Run("success", func(t *testing.T) {
		refresh, err := signToken(u, "refresh", refreshTokenTTL)
		assert.NoError(t, err)

		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*user.User, error) {
				assert.Equal(t, u.ID.String(), id)
				return u, nil
			},
		}
		svc := NewService(repo)

		pair, err := svc.RefreshToken(context.Background(), refresh)
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("negative access token used as refresh", func(t *testing.T) {
		access, err := signToken(u, "access", accessTokenTTL)
		assert.NoError(t, err)

		svc := NewService(&fakeRepo{})

		_, err = svc.RefreshToken(context.Background(), access)
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("negative garbage token", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.RefreshToken(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}

func TestGetMe(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		u := &user.User{ID: uuid.New(), Email: "dina@example.com", FullName: "Dina Putri", Role: rbac.RoleEmployee}
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*user.User, error) {
				return u, nil
			},
		}
		svc := NewService(repo)

		resp, err := svc.GetMe(context.Background(), u.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, u.Email, resp.Email)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.GetMe(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})

	t.Run("negative not found", func(t *testing.T) {
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*user.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(repo)

		_, err := svc.GetMe(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})
}
