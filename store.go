package docauth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenSQLite opens a bun handle over SQLite. Meant for examples, tests,
// and small single-node deployments; production installs bring their
// own *bun.DB.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open sqlite database")
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the three tables if they do not exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*RolePermission)(nil),
		(*Document)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create schema")
		}
	}

	return nil
}

// BunUserStore adapts the Users repository to the narrow UserStore the
// Authenticator depends on, normalizing repository misses into
// not-found errors the orchestrator can test with errors.IsNotFound.
type BunUserStore struct {
	users Users
}

var _ UserStore = (*BunUserStore)(nil)

// NewUserStore wraps a Users repository.
func NewUserStore(users Users) *BunUserStore {
	return &BunUserStore{users: users}
}

func (s *BunUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, normalizeStoreError(err, map[string]any{"email": NormalizeEmail(email)})
	}
	return user, nil
}

func (s *BunUserStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.users.GetByIdentifier(ctx, id.String())
	if err != nil {
		return nil, normalizeStoreError(err, map[string]any{"id": id.String()})
	}
	return user, nil
}

func (s *BunUserStore) Create(ctx context.Context, record *User) (*User, error) {
	created, err := s.users.Create(ctx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}
	return created, nil
}

func (s *BunUserStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := s.users.TrackLogin(ctx, id, at); err != nil {
		return normalizeStoreError(err, map[string]any{"id": id.String()})
	}
	return nil
}

func (s *BunUserStore) UpdateProfileFields(ctx context.Context, id uuid.UUID, changes ProfileUpdate) (*User, error) {
	user, err := s.users.UpdateProfile(ctx, id, changes)
	if err != nil {
		return nil, normalizeStoreError(err, map[string]any{"id": id.String()})
	}
	return user, nil
}

func normalizeStoreError(err error, metadata map[string]any) error {
	if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
		return errors.New("user not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithMetadata(metadata)
	}
	return errors.Wrap(err, errors.CategoryInternal, "user store failure")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errContains(err, "UNIQUE constraint failed") ||
		errContains(err, "duplicate key value")
}
