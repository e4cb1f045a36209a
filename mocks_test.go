package docauth_test

import (
	"context"
	"time"

	"github.com/goliatone/go-docauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements docauth.UserStore for testing
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*docauth.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*docauth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, id uuid.UUID) (*docauth.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*docauth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, record *docauth.User) (*docauth.User, error) {
	args := m.Called(ctx, record)
	if fn, ok := args.Get(0).(func(context.Context, *docauth.User) *docauth.User); ok {
		return fn(ctx, record), args.Error(1)
	}
	if user, ok := args.Get(0).(*docauth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserStore) UpdateProfileFields(ctx context.Context, id uuid.UUID, changes docauth.ProfileUpdate) (*docauth.User, error) {
	args := m.Called(ctx, id, changes)
	if user, ok := args.Get(0).(*docauth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPermissionSource implements docauth.PermissionSource for testing
type MockPermissionSource struct {
	mock.Mock
}

func (m *MockPermissionSource) FindAllForRole(ctx context.Context, role docauth.Role) ([]*docauth.RolePermission, error) {
	args := m.Called(ctx, role)
	if rows, ok := args.Get(0).([]*docauth.RolePermission); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPermissionSource) FindAll(ctx context.Context) ([]*docauth.RolePermission, error) {
	args := m.Called(ctx)
	if rows, ok := args.Get(0).([]*docauth.RolePermission); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLogger implements docauth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func permissionRow(role docauth.Role, workspace docauth.Workspace, view, download, archive, manage bool) *docauth.RolePermission {
	return &docauth.RolePermission{
		ID:                 uuid.New(),
		Role:               role,
		Workspace:          workspace,
		CanView:            view,
		CanDownload:        download,
		CanArchiveOthers:   archive,
		CanManageWorkspace: manage,
	}
}

func testUser(role docauth.Role, workspace docauth.Workspace) *docauth.User {
	return &docauth.User{
		ID:        uuid.New(),
		Email:     "pat.doe@example.org",
		FullName:  "Pat Doe",
		Role:      role,
		Workspace: workspace,
		IsActive:  true,
	}
}
