package docauth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Permissions is the role_permissions repository. It backs the
// PermissionResolver through the PermissionSource interface.
type Permissions interface {
	repository.Repository[*RolePermission]

	FindAll(ctx context.Context) ([]*RolePermission, error)
	FindAllTx(ctx context.Context, tx bun.IDB) ([]*RolePermission, error)
	FindAllForRole(ctx context.Context, role Role) ([]*RolePermission, error)
	FindAllForRoleTx(ctx context.Context, tx bun.IDB, role Role) ([]*RolePermission, error)

	Grant(ctx context.Context, row *RolePermission) (*RolePermission, error)
	GrantTx(ctx context.Context, tx bun.IDB, row *RolePermission) (*RolePermission, error)
}

type permissions struct {
	repository.Repository[*RolePermission]
	db *bun.DB
}

var (
	_ Permissions      = (*permissions)(nil)
	_ PermissionSource = (*permissions)(nil)
)

func NewPermissionsRepository(db *bun.DB) Permissions {
	repo := repository.NewRepository[*RolePermission](db, repository.ModelHandlers[*RolePermission]{
		NewRecord: func() *RolePermission { return &RolePermission{} },
		GetID: func(p *RolePermission) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *RolePermission, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &permissions{
		Repository: repo,
		db:         db,
	}
}

func (a *permissions) FindAll(ctx context.Context) ([]*RolePermission, error) {
	return a.FindAllTx(ctx, a.db)
}

func (a *permissions) FindAllTx(ctx context.Context, tx bun.IDB) ([]*RolePermission, error) {
	var rows []*RolePermission
	err := tx.NewSelect().Model(&rows).
		Order("user_role", "workspace").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *permissions) FindAllForRole(ctx context.Context, role Role) ([]*RolePermission, error) {
	return a.FindAllForRoleTx(ctx, a.db, role)
}

func (a *permissions) FindAllForRoleTx(ctx context.Context, tx bun.IDB, role Role) ([]*RolePermission, error) {
	var rows []*RolePermission
	err := tx.NewSelect().Model(&rows).
		Where("?TableAlias.user_role = ?", role).
		Order("workspace").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *permissions) Grant(ctx context.Context, row *RolePermission) (*RolePermission, error) {
	return a.GrantTx(ctx, a.db, row)
}

// GrantTx upserts one matrix cell keyed by (role, workspace).
func (a *permissions) GrantTx(ctx context.Context, tx bun.IDB, row *RolePermission) (*RolePermission, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	_, err := tx.NewInsert().Model(row).
		On("CONFLICT (user_role, workspace) DO UPDATE").
		Set("can_view = EXCLUDED.can_view").
		Set("can_download = EXCLUDED.can_download").
		Set("can_archive_others = EXCLUDED.can_archive_others").
		Set("can_manage_workspace = EXCLUDED.can_manage_workspace").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return row, nil
}

// SeedPermissions writes the rows into the matrix table, upserting
// cell by cell inside one transaction.
func SeedPermissions(ctx context.Context, manager RepositoryManager, rows []*RolePermission) error {
	return manager.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, row := range rows {
			if row == nil {
				continue
			}
			if _, err := manager.Permissions().GrantTx(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
}
