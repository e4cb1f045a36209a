package docauth

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
)

// PermissionFlags is the capability quadruple carried by one matrix
// cell. Absent flags deny; there is no wildcard.
type PermissionFlags struct {
	CanView            bool `json:"can_view"`
	CanDownload        bool `json:"can_download"`
	CanArchiveOthers   bool `json:"can_archive_others"`
	CanManageWorkspace bool `json:"can_manage_workspace"`
}

// Allows maps an action to its flag. Unknown actions deny.
func (f PermissionFlags) Allows(action Action) bool {
	switch action {
	case ActionView:
		return f.CanView
	case ActionDownload:
		return f.CanDownload
	case ActionArchive:
		return f.CanArchiveOthers
	case ActionManage:
		return f.CanManageWorkspace
	default:
		return false
	}
}

// Union merges two cells flag by flag.
func (f PermissionFlags) Union(other PermissionFlags) PermissionFlags {
	return PermissionFlags{
		CanView:            f.CanView || other.CanView,
		CanDownload:        f.CanDownload || other.CanDownload,
		CanArchiveOthers:   f.CanArchiveOthers || other.CanArchiveOthers,
		CanManageWorkspace: f.CanManageWorkspace || other.CanManageWorkspace,
	}
}

// IsZero reports whether every flag denies.
func (f PermissionFlags) IsZero() bool {
	return !f.CanView && !f.CanDownload && !f.CanArchiveOthers && !f.CanManageWorkspace
}

// WorkspaceSet is the set of workspaces a capability covers.
type WorkspaceSet map[Workspace]struct{}

// Has reports membership.
func (s WorkspaceSet) Has(workspace Workspace) bool {
	_, ok := s[workspace]
	return ok
}

// Add inserts a workspace, allocating on first use.
func (s *WorkspaceSet) Add(workspace Workspace) {
	if *s == nil {
		*s = make(WorkspaceSet)
	}
	(*s)[workspace] = struct{}{}
}

// List returns the members in the canonical workspace order.
func (s WorkspaceSet) List() []Workspace {
	if len(s) == 0 {
		return nil
	}
	out := make([]Workspace, 0, len(s))
	for _, workspace := range AllWorkspaces() {
		if s.Has(workspace) {
			out = append(out, workspace)
		}
	}
	return out
}

// WorkspaceGrants is the resolved capability view for one role: for
// each of the four actions, the workspaces it is allowed in.
type WorkspaceGrants struct {
	View          WorkspaceSet `json:"view,omitempty"`
	Download      WorkspaceSet `json:"download,omitempty"`
	ArchiveOthers WorkspaceSet `json:"archive_others,omitempty"`
	Manage        WorkspaceSet `json:"manage,omitempty"`
}

// Set returns the workspace set backing an action. Unknown actions
// yield the empty set.
func (g WorkspaceGrants) Set(action Action) WorkspaceSet {
	switch action {
	case ActionView:
		return g.View
	case ActionDownload:
		return g.Download
	case ActionArchive:
		return g.ArchiveOthers
	case ActionManage:
		return g.Manage
	default:
		return nil
	}
}

// Allows reports whether the action is granted in the workspace.
func (g WorkspaceGrants) Allows(action Action, workspace Workspace) bool {
	return g.Set(action).Has(workspace)
}

type matrixKey struct {
	role      Role
	workspace Workspace
}

// PermissionMatrix is the in-memory form of the role_permissions table.
type PermissionMatrix map[matrixKey]PermissionFlags

// BuildPermissionMatrix folds rows into a matrix. Duplicate
// (role, workspace) rows union their flags so a stray duplicate can
// only widen, never silently narrow, a grant.
func BuildPermissionMatrix(rows []*RolePermission) PermissionMatrix {
	matrix := make(PermissionMatrix, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		key := matrixKey{role: row.Role, workspace: row.Workspace}
		matrix[key] = matrix[key].Union(row.Flags())
	}
	return matrix
}

// PermissionResolver answers capability questions from a snapshot of
// the permission matrix. The snapshot loads once at startup and on
// explicit Reload; lookups never touch the store. Every miss denies:
// an unknown role, an unknown workspace, or a missing cell all resolve
// to no access.
type PermissionResolver struct {
	mu     sync.RWMutex
	matrix PermissionMatrix

	source PermissionSource
	logger Logger
}

// Verify interface compliance
var _ PermissionChecker = (*PermissionResolver)(nil)

// ResolverOption customizes PermissionResolver construction.
type ResolverOption func(*PermissionResolver)

// WithMatrix seeds the resolver with a prebuilt matrix, bypassing the
// store. Useful for tests and for static deployments.
func WithMatrix(matrix PermissionMatrix) ResolverOption {
	return func(r *PermissionResolver) {
		if matrix != nil {
			r.matrix = matrix
		}
	}
}

// WithResolverLogger overrides the default logger.
func WithResolverLogger(logger Logger) ResolverOption {
	return func(r *PermissionResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewPermissionResolver creates a resolver backed by the given source.
// The source may be nil when the matrix is seeded through WithMatrix.
func NewPermissionResolver(source PermissionSource, opts ...ResolverOption) *PermissionResolver {
	r := &PermissionResolver{
		matrix: make(PermissionMatrix),
		source: source,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Reload replaces the snapshot with the current store contents. The
// swap is atomic: concurrent lookups see either the old matrix or the
// new one, never a partial load.
func (r *PermissionResolver) Reload(ctx context.Context) error {
	if r.source == nil {
		return errors.New("permission resolver has no source to reload from", errors.CategoryInternal)
	}

	rows, err := r.source.FindAll(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load permission matrix")
	}

	matrix := BuildPermissionMatrix(rows)

	r.mu.Lock()
	r.matrix = matrix
	r.mu.Unlock()

	r.logger.Info("permission matrix loaded: %d rows, %d cells", len(rows), len(matrix))

	return nil
}

// Resolve returns the full grant view for a role. A role with no rows
// gets empty sets.
func (r *PermissionResolver) Resolve(role Role) WorkspaceGrants {
	var grants WorkspaceGrants

	r.mu.RLock()
	defer r.mu.RUnlock()

	for key, flags := range r.matrix {
		if key.role != role {
			continue
		}
		if flags.CanView {
			grants.View.Add(key.workspace)
		}
		if flags.CanDownload {
			grants.Download.Add(key.workspace)
		}
		if flags.CanArchiveOthers {
			grants.ArchiveOthers.Add(key.workspace)
		}
		if flags.CanManageWorkspace {
			grants.Manage.Add(key.workspace)
		}
	}

	return grants
}

// CanPerform reports whether the role holds the action in every listed
// workspace. With no workspace it is an any-workspace probe: does the
// role hold the action anywhere at all.
func (r *PermissionResolver) CanPerform(role Role, action Action, workspaces ...Workspace) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(workspaces) == 0 {
		for key, flags := range r.matrix {
			if key.role == role && flags.Allows(action) {
				return true
			}
		}
		return false
	}

	for _, workspace := range workspaces {
		flags, ok := r.matrix[matrixKey{role: role, workspace: workspace}]
		if !ok || !flags.Allows(action) {
			return false
		}
	}

	return true
}
