package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.accounts.Register(ctx, RegisterInput{
		Username:        "newcomer",
		Email:           "newcomer@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role, "registration always yields the user role")
	assert.NotEqual(t, "hunter22", user.Password, "password is stored hashed")

	got, pair, err := env.accounts.Authenticate(ctx, "newcomer", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"password mismatch", RegisterInput{Username: "abc", Email: "a@b.co", Password: "hunter22", ConfirmPassword: "hunter23"}},
		{"short password", RegisterInput{Username: "abc", Email: "a@b.co", Password: "abc", ConfirmPassword: "abc"}},
		{"bad email", RegisterInput{Username: "abc", Email: "not-an-email", Password: "hunter22", ConfirmPassword: "hunter22"}},
		{"bad username", RegisterInput{Username: "x", Email: "a@b.co", Password: "hunter22", ConfirmPassword: "hunter22"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.accounts.Register(ctx, tt.in)
			require.Error(t, err)
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := RegisterInput{Username: "taken", Email: "taken@example.com", Password: "hunter22", ConfirmPassword: "hunter22"}
	_, err := env.accounts.Register(ctx, in)
	require.NoError(t, err)

	in.Email = "second@example.com"
	_, err = env.accounts.Register(ctx, in)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeDuplicateIdentity, appErr.Code)
}

// Unknown usernames and wrong passwords are indistinguishable to the caller.
func TestAuthenticateUniformFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.accounts.Register(ctx, RegisterInput{
		Username: "knownuser", Email: "known@example.com",
		Password: "hunter22", ConfirmPassword: "hunter22",
	})
	require.NoError(t, err)

	_, _, errUnknown := env.accounts.Authenticate(ctx, "ghost", "whatever1")
	_, _, errWrongPw := env.accounts.Authenticate(ctx, "knownuser", "wrongpass")

	var e1, e2 *models.AppError
	require.True(t, errors.As(errUnknown, &e1))
	require.True(t, errors.As(errWrongPw, &e2))
	assert.Equal(t, models.CodeInvalidCreds, e1.Code)
	assert.Equal(t, e1.Code, e2.Code)
	assert.Equal(t, e1.Message, e2.Message)
}

func TestDeleteUserMatrix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "delmatrix_admin", models.RoleAdmin)
	manager := env.createUser(t, "delmatrix_manager", models.RoleManager)
	plain := env.createUser(t, "delmatrix_user", models.RoleUser)

	t.Run("self deletion refused before role protection", func(t *testing.T) {
		err := env.accounts.DeleteUser(ctx, admin, admin.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ReasonSelfDeletion, appErr.Reason)
	})

	t.Run("manager cannot delete admin even though listing would hide it", func(t *testing.T) {
		err := env.accounts.DeleteUser(ctx, manager, admin.ID)
		require.Error(t, err)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodePermissionDenied, appErr.Code)
		assert.Equal(t, models.ReasonRoleProtection, appErr.Reason)
	})

	t.Run("plain user cannot delete anyone", func(t *testing.T) {
		err := env.accounts.DeleteUser(ctx, plain, manager.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ReasonRoleProtection, appErr.Reason)
	})

	t.Run("manager deletes a plain user", func(t *testing.T) {
		victim := env.createUser(t, "delmatrix_victim", models.RoleUser)
		require.NoError(t, env.accounts.DeleteUser(ctx, manager, victim.ID))
	})

	t.Run("admin deletes a manager", func(t *testing.T) {
		target := env.createUser(t, "delmatrix_manager2", models.RoleManager)
		require.NoError(t, env.accounts.DeleteUser(ctx, admin, target.ID))
	})

	t.Run("missing target is not found", func(t *testing.T) {
		err := env.accounts.DeleteUser(ctx, admin, 99999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestUpdateUserRoleChangeAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "rolechg_admin", models.RoleAdmin)
	manager := env.createUser(t, "rolechg_manager", models.RoleManager)
	target := env.createUser(t, "rolechg_target", models.RoleUser)

	managerRole := models.RoleManager

	t.Run("manager cannot promote", func(t *testing.T) {
		_, err := env.accounts.UpdateUser(ctx, manager, UpdateProfileInput{
			UserID: target.ID,
			Role:   &managerRole,
		})
		require.Error(t, err)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ReasonRoleChange, appErr.Reason)
	})

	t.Run("admin promotes to manager", func(t *testing.T) {
		updated, err := env.accounts.UpdateUser(ctx, admin, UpdateProfileInput{
			UserID: target.ID,
			Role:   &managerRole,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleManager, updated.Role)
	})
}

func TestListUsersScopes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "list_admin", models.RoleAdmin)
	manager := env.createUser(t, "list_manager", models.RoleManager)
	plain := env.createUser(t, "list_user", models.RoleUser)

	adminView, err := env.accounts.ListUsers(ctx, ListUsersInput{Actor: admin})
	require.NoError(t, err)
	assert.Len(t, adminView, 3)

	managerView, err := env.accounts.ListUsers(ctx, ListUsersInput{Actor: manager})
	require.NoError(t, err)
	require.Len(t, managerView, 1)
	assert.Equal(t, models.RoleUser, managerView[0].Role)

	plainView, err := env.accounts.ListUsers(ctx, ListUsersInput{Actor: plain})
	require.NoError(t, err)
	assert.Empty(t, plainView)

	// Managers cannot fetch an admin through the scoped view at all.
	_, err = env.accounts.GetUser(ctx, manager, admin.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.accounts.Register(ctx, RegisterInput{
		Username: "pwchanger", Email: "pw@example.com",
		Password: "original1", ConfirmPassword: "original1",
	})
	require.NoError(t, err)

	err = env.accounts.ChangePassword(ctx, ChangePasswordInput{
		UserID: user.ID, OldPassword: "wrong", NewPassword: "replaced1", ConfirmPassword: "replaced1",
	})
	require.Error(t, err)

	err = env.accounts.ChangePassword(ctx, ChangePasswordInput{
		UserID: user.ID, OldPassword: "original1", NewPassword: "replaced1", ConfirmPassword: "replaced1",
	})
	require.NoError(t, err)

	_, _, err = env.accounts.Authenticate(ctx, "pwchanger", "replaced1")
	assert.NoError(t, err)
	_, _, err = env.accounts.Authenticate(ctx, "pwchanger", "original1")
	assert.Error(t, err)
}
