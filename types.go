package docauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the settings consumed by the core's constructors.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetBcryptCost() int
	GetEnforcePasswordPolicy() bool
}

// TokenPair is the result of issuing session credentials.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// UserStore is the credential store collaborator. Implementations
// report a missing record through an error matching errors.IsNotFound,
// never through a nil record with nil error.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateProfileFields(ctx context.Context, id uuid.UUID, changes ProfileUpdate) (*User, error)
}

// PermissionSource is the permission-matrix store collaborator.
type PermissionSource interface {
	FindAllForRole(ctx context.Context, role Role) ([]*RolePermission, error)
	FindAll(ctx context.Context) ([]*RolePermission, error)
}

// PermissionChecker answers workspace-scoped capability questions. It
// is the narrow view of the PermissionResolver that the document state
// machine and the route middleware depend on.
type PermissionChecker interface {
	CanPerform(role Role, action Action, workspace ...Workspace) bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] DOCAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] DOCAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] DOCAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] DOCAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
