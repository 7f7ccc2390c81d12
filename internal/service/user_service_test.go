package service

import (
	"context"
	"testing"
	"time"

	"fruitstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserTestService() (*userService, *MockUserRepository) {
	users := new(MockUserRepository)
	svc := NewUserService(users, bcrypt.MinCost, zerolog.Nop()).(*userService)
	svc.now = func() time.Time { return fixedNow }
	return svc, users
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and defaults role", func(t *testing.T) {
		svc, users := newUserTestService()
		users.On("GetByEmail", ctx, "clerk@example.com").Return(nil, nil)
		users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		u, err := svc.Create(ctx, &model.CreateUserRequest{
			Name:     "Clerk",
			Email:    "Clerk@example.com",
			Password: "s3cret-pass",
		})

		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, u.Role)
		assert.Equal(t, "clerk@example.com", u.Email)
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
		users.AssertExpectations(t)
	})

	t.Run("short password", func(t *testing.T) {
		svc, _ := newUserTestService()

		_, err := svc.Create(ctx, &model.CreateUserRequest{Name: "Clerk", Email: "c@example.com", Password: "short"})

		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, users := newUserTestService()
		users.On("GetByEmail", ctx, "admin@example.com").Return(&model.User{ID: uuid.New()}, nil)

		_, err := svc.Create(ctx, &model.CreateUserRequest{
			Name:     "Admin",
			Email:    "admin@example.com",
			Password: "long-enough",
			Role:     model.RoleAdmin,
		})

		assert.ErrorIs(t, err, model.ErrDuplicateUserEmail)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserTestService()

	existing := &model.User{ID: uuid.New(), Name: "Clerk", Email: "clerk@example.com", Role: model.RoleUser, PasswordHash: "old"}
	role := model.RoleAdmin
	password := "new-password"

	users.On("GetByID", ctx, existing.ID).Return(existing, nil)
	users.On("Update", ctx, mock.Anything).Return(nil)

	updated, err := svc.Update(ctx, existing.ID, &model.UpdateUserRequest{Role: &role, Password: &password})

	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
	users.AssertExpectations(t)
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserTestService()

	id := uuid.New()
	users.On("GetByID", ctx, id).Return(nil, nil)

	_, err := svc.GetByID(ctx, id)

	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserTestService()

	users.On("List", ctx, maxListLimit, 0).Return([]model.User{{Name: "Clerk"}}, nil)

	list, err := svc.List(ctx, 1000, -1)

	require.NoError(t, err)
	assert.Len(t, list, 1)
	users.AssertExpectations(t)
}
