package leavetype_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"leavedesk/internal/leavetype"
	leavetypeerrors "leavedesk/internal/leavetype/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const listCacheKey = "leave_types:all"

type fakeLeaveTypeRepository struct {
	createFn   func(ctx context.Context, lt *leavetype.LeaveType) error
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
	findAllFn  func(ctx context.Context) ([]leavetype.LeaveType, error)
	updateFn   func(ctx context.Context, lt *leavetype.LeaveType) error
	deleteFn   func(ctx context.Context, id string) error

	findAllCalls int
}

func (f *fakeLeaveTypeRepository) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.createFn != nil {
		return f.createFn(ctx, lt)
	}
	return nil
}

func (f *fakeLeaveTypeRepository) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	f.findAllCalls++
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveTypeRepository) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, lt)
	}
	return nil
}

func (f *fakeLeaveTypeRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func annualFixture() leavetype.LeaveType {
	return leavetype.LeaveType{
		ID:               uuid.New(),
		Name:             "Annual Leave",
		Category:         leavetype.CategoryAnnual,
		RequiresApproval: true,
		DeductsBalance:   true,
	}
}

func boolPtr(v bool) *bool { return &v }

func TestLeaveTypeService_GetAll(t *testing.T) {
	t.Run("success cache miss populates redis", func(t *testing.T) {
		fixture := annualFixture()
		repo := &fakeLeaveTypeRepository{
			findAllFn: func(ctx context.Context) ([]leavetype.LeaveType, error) {
				return []leavetype.LeaveType{fixture}, nil
			},
		}

		expected := []leavetype.LeaveTypeResponse{{
			ID:               fixture.ID.String(),
			Name:             fixture.Name,
			Category:         fixture.Category,
			RequiresApproval: true,
			DeductsBalance:   true,
		}}
		payload, err := json.Marshal(expected)
		require.NoError(t, err)

		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(listCacheKey).RedisNil()
		mock.ExpectSet(listCacheKey, payload, 5*time.Minute).SetVal("OK")

		svc := leavetype.NewService(repo, rdb)

		resp, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.Equal(t, 1, repo.findAllCalls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success cache hit skips repository", func(t *testing.T) {
		fixture := annualFixture()
		cached := []leavetype.LeaveTypeResponse{{
			ID:       fixture.ID.String(),
			Name:     fixture.Name,
			Category: fixture.Category,
		}}
		payload, err := json.Marshal(cached)
		require.NoError(t, err)

		repo := &fakeLeaveTypeRepository{
			findAllFn: func(ctx context.Context) ([]leavetype.LeaveType, error) {
				t.Fatal("repository must not be hit on cache hit")
				return nil, nil
			},
		}

		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(listCacheKey).SetVal(string(payload))

		svc := leavetype.NewService(repo, rdb)

		resp, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.Equal(t, 0, repo.findAllCalls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaveTypeService_Create(t *testing.T) {
	t.Run("success invalidates cache", func(t *testing.T) {
		var saved *leavetype.LeaveType
		repo := &fakeLeaveTypeRepository{
			createFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				saved = lt
				return nil
			},
		}

		rdb, mock := redismock.NewClientMock()
		mock.ExpectDel(listCacheKey).SetVal(1)

		svc := leavetype.NewService(repo, rdb)

		resp, err := svc.Create(context.Background(), leavetype.CreateLeaveTypeRequest{
			Name:             "Sick Leave",
			Category:         leavetype.CategorySick,
			RequiresApproval: boolPtr(false),
			DeductsBalance:   boolPtr(true),
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, leavetype.CategorySick, saved.Category)
		assert.False(t, resp.RequiresApproval)
		assert.True(t, resp.DeductsBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative duplicate name", func(t *testing.T) {
		repo := &fakeLeaveTypeRepository{
			createFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				return &pgconn.PgError{Code: "23505"}
			},
		}
		svc := leavetype.NewService(repo, nil)

		_, err := svc.Create(context.Background(), leavetype.CreateLeaveTypeRequest{
			Name:             "Annual Leave",
			Category:         leavetype.CategoryAnnual,
			RequiresApproval: boolPtr(true),
			DeductsBalance:   boolPtr(true),
		})
		assert.ErrorIs(t, err, leavetypeerrors.ErrDuplicateName)
	})

	t.Run("negative unknown category", func(t *testing.T) {
		svc := leavetype.NewService(&fakeLeaveTypeRepository{}, nil)

		_, err := svc.Create(context.Background(), leavetype.CreateLeaveTypeRequest{
			Name:             "Sabbatical",
			Category:         "SABBATICAL",
			RequiresApproval: boolPtr(true),
			DeductsBalance:   boolPtr(false),
		})
		assert.ErrorIs(t, err, leavetypeerrors.ErrInvalidCategory)
	})
}

func TestLeaveTypeService_Update(t *testing.T) {
	fixture := annualFixture()

	t.Run("success", func(t *testing.T) {
		var saved *leavetype.LeaveType
		repo := &fakeLeaveTypeRepository{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				lt := fixture
				return &lt, nil
			},
			updateFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				saved = lt
				return nil
			},
		}

		rdb, mock := redismock.NewClientMock()
		mock.ExpectDel(listCacheKey).SetVal(1)

		svc := leavetype.NewService(repo, rdb)

		resp, err := svc.Update(context.Background(), fixture.ID.String(), leavetype.UpdateLeaveTypeRequest{
			Name:             "Annual Leave (Revised)",
			Category:         leavetype.CategoryAnnual,
			RequiresApproval: boolPtr(true),
			DeductsBalance:   boolPtr(false),
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Annual Leave (Revised)", saved.Name)
		assert.False(t, resp.DeductsBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := leavetype.NewService(&fakeLeaveTypeRepository{}, nil)

		_, err := svc.Update(context.Background(), uuid.NewString(), leavetype.UpdateLeaveTypeRequest{
			Name:             "Annual Leave",
			Category:         leavetype.CategoryAnnual,
			RequiresApproval: boolPtr(true),
			DeductsBalance:   boolPtr(true),
		})
		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
	})
}

func TestLeaveTypeService_Delete(t *testing.T) {
	fixture := annualFixture()

	t.Run("success", func(t *testing.T) {
		var deletedID string
		repo := &fakeLeaveTypeRepository{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				lt := fixture
				return &lt, nil
			},
			deleteFn: func(ctx context.Context, id string) error {
				deletedID = id
				return nil
			},
		}

		rdb, mock := redismock.NewClientMock()
		mock.ExpectDel(listCacheKey).SetVal(1)

		svc := leavetype.NewService(repo, rdb)

		err := svc.Delete(context.Background(), fixture.ID.String())
		require.NoError(t, err)
		assert.Equal(t, fixture.ID.String(), deletedID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative invalid id", func(t *testing.T) {
		svc := leavetype.NewService(&fakeLeaveTypeRepository{}, nil)

		err := svc.Delete(context.Background(), "nope")
		assert.ErrorIs(t, err, leavetypeerrors.ErrInvalidLeaveTypeID)
	})
}
