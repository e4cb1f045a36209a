package guard_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docauth"
	"github.com/goliatone/go-docauth/middleware/guard"
)

var guardSigningKey = []byte("guard-test-signing-key")

func newTokenService() docauth.TokenService {
	return docauth.NewTokenService(
		guardSigningKey,
		15*time.Minute,
		24*time.Hour,
		"docauth-test",
		docauth.NewRevocationList(),
		nil,
	)
}

func issueAccessToken(t *testing.T, tokens docauth.TokenService, role docauth.Role, workspace docauth.Workspace) string {
	t.Helper()

	pair, err := tokens.IssuePair(&docauth.User{
		ID:        uuid.New(),
		Email:     "pat.doe@example.org",
		FullName:  "Pat Doe",
		Role:      role,
		Workspace: workspace,
		IsActive:  true,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func guardChecker() docauth.PermissionChecker {
	rows := []*docauth.RolePermission{
		{
			ID:          uuid.New(),
			Role:        docauth.RoleSecretaryFinance,
			Workspace:   docauth.WorkspaceFinance,
			CanView:     true,
			CanDownload: true,
		},
		{
			ID:        uuid.New(),
			Role:      docauth.RoleCommissionMember,
			Workspace: docauth.WorkspaceCommissions,
			CanView:   true,
		},
	}
	return docauth.NewPermissionResolver(nil, docauth.WithMatrix(docauth.BuildPermissionMatrix(rows)))
}

func passthroughErrors(cfg guard.Config) guard.Config {
	cfg.ErrorHandler = func(c router.Context, err error) error {
		return err
	}
	return cfg
}

func expectSuccess(ctx *MockContext) {
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything)
}

func TestGuardBearerExtraction(t *testing.T) {
	tokens := newTokenService()
	token := issueAccessToken(t, tokens, docauth.RoleSecretaryFinance, docauth.WorkspaceFinance)

	handler := guard.New(passthroughErrors(guard.Config{
		Verifier: tokens,
	}))(func(c router.Context) error { return c.Next() })

	t.Run("valid bearer token passes through", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
		expectSuccess(ctx)

		require.NoError(t, handler(ctx))
		assert.True(t, ctx.NextCalled)
		ctx.AssertCalled(t, "Locals", "user", mock.Anything)
	})

	t.Run("missing header is reported as missing token", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("")

		err := handler(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, guard.ErrTokenMissingOrMalformed)
		assert.False(t, ctx.NextCalled)
	})

	t.Run("header without bearer scheme is rejected", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Basic dXNlcjpwYXNz")

		err := handler(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, guard.ErrTokenMissingOrMalformed)
	})

	t.Run("garbage token is rejected by the verifier", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer not.a.token")

		err := handler(ctx)
		require.Error(t, err)
		assert.True(t, docauth.IsTokenInvalidError(err))
	})
}

func TestGuardRevokedToken(t *testing.T) {
	tokens := newTokenService()
	token := issueAccessToken(t, tokens, docauth.RoleSecretaryFinance, docauth.WorkspaceFinance)
	tokens.Revoke(token)

	handler := guard.New(passthroughErrors(guard.Config{
		Verifier: tokens,
	}))(func(c router.Context) error { return c.Next() })

	ctx := &MockContext{}
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)

	err := handler(ctx)
	require.Error(t, err)
	assert.True(t, docauth.IsTokenRevokedError(err))
	assert.False(t, ctx.NextCalled)
}

func TestGuardQueryParamFallback(t *testing.T) {
	tokens := newTokenService()
	token := issueAccessToken(t, tokens, docauth.RoleSecretaryFinance, docauth.WorkspaceFinance)

	handler := guard.New(passthroughErrors(guard.Config{
		Verifier:   tokens,
		QueryParam: "token",
	}))(func(c router.Context) error { return c.Next() })

	t.Run("token in query parameter", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("")
		ctx.On("Query", "token", "").Return(token)
		expectSuccess(ctx)

		require.NoError(t, handler(ctx))
		assert.True(t, ctx.NextCalled)
	})

	t.Run("empty query parameter still fails", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("")
		ctx.On("Query", "token", "").Return("")

		err := handler(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, guard.ErrTokenMissingOrMalformed)
	})
}

func TestGuardCapabilityEnforcement(t *testing.T) {
	tokens := newTokenService()
	checker := guardChecker()

	t.Run("workspace from route parameter", func(t *testing.T) {
		token := issueAccessToken(t, tokens, docauth.RoleSecretaryFinance, docauth.WorkspaceFinance)
		handler := guard.New(passthroughErrors(guard.Config{
			Verifier:       tokens,
			Checker:        checker,
			RequiredAction: docauth.ActionDownload,
			WorkspaceParam: "workspace",
		}))(func(c router.Context) error { return c.Next() })

		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
		ctx.On("Param", "workspace").Return("finance")
		expectSuccess(ctx)

		require.NoError(t, handler(ctx))
		assert.True(t, ctx.NextCalled)
	})

	t.Run("unknown workspace parameter denies", func(t *testing.T) {
		token := issueAccessToken(t, tokens, docauth.RoleSecretaryFinance, docauth.WorkspaceFinance)
		handler := guard.New(passthroughErrors(guard.Config{
			Verifier:       tokens,
			Checker:        checker,
			RequiredAction: docauth.ActionDownload,
			WorkspaceParam: "workspace",
		}))(func(c router.Context) error { return c.Next() })

		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
		ctx.On("Param", "workspace").Return("basement")

		err := handler(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, guard.ErrCapabilityDenied)
		assert.False(t, ctx.NextCalled)
	})

	t.Run("role without the capability is denied", func(t *testing.T) {
		token := issueAccessToken(t, tokens, docauth.RoleCommissionMember, docauth.WorkspaceCommissions)
		handler := guard.New(passthroughErrors(guard.Config{
			Verifier:       tokens,
			Checker:        checker,
			RequiredAction: docauth.ActionDownload,
			Workspace:      docauth.WorkspaceFinance,
		}))(func(c router.Context) error { return c.Next() })

		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)

		err := handler(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, guard.ErrCapabilityDenied)
	})

	t.Run("claims home workspace is the fallback", func(t *testing.T) {
		token := issueAccessToken(t, tokens, docauth.RoleCommissionMember, docauth.WorkspaceCommissions)
		handler := guard.New(passthroughErrors(guard.Config{
			Verifier:       tokens,
			Checker:        checker,
			RequiredAction: docauth.ActionView,
		}))(func(c router.Context) error { return c.Next() })

		ctx := &MockContext{}
		ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
		expectSuccess(ctx)

		require.NoError(t, handler(ctx))
		assert.True(t, ctx.NextCalled)
	})
}

func TestGuardFilterSkips(t *testing.T) {
	tokens := newTokenService()

	handler := guard.New(guard.Config{
		Verifier: tokens,
		Filter: func(c router.Context) bool {
			return true
		},
	})(func(c router.Context) error { return c.Next() })

	ctx := &MockContext{}

	require.NoError(t, handler(ctx))
	assert.True(t, ctx.NextCalled)
}

func TestGuardDefaultErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing token maps to bad request", guard.ErrTokenMissingOrMalformed, router.StatusBadRequest},
		{"capability denied maps to forbidden", guard.ErrCapabilityDenied, router.StatusForbidden},
		{"anything else maps to unauthorized", docauth.ErrTokenRevoked, router.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &MockContext{}
			ctx.On("Status", tt.status).Return(nil)
			ctx.On("SendString", mock.Anything).Return(nil)

			require.NoError(t, guard.DefaultErrorHandler(ctx, tt.err))
			ctx.AssertCalled(t, "Status", tt.status)
		})
	}
}
