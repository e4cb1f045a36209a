package docauth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record persisted by the credential store.
// PasswordHash is nullable: a nil hash means password login is disabled
// for the account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	FullName      string         `bun:"full_name,notnull" json:"full_name,omitempty"`
	Phone         string         `bun:"phone_number" json:"phone_number,omitempty"`
	Role          Role           `bun:"user_role,notnull" json:"user_role,omitempty"`
	Workspace     Workspace      `bun:"workspace,notnull" json:"workspace,omitempty"`
	PasswordHash  *string        `bun:"password_hash" json:"-"`
	IsActive      bool           `bun:"is_active,notnull,default:true" json:"is_active"`
	LastLoginAt   *time.Time     `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	Preferences   map[string]any `bun:"preferences" json:"preferences,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPassword reports whether password login is enabled.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}

// SetPreference will append information to the preference bag
func (u *User) SetPreference(key string, val any) *User {
	if u.Preferences == nil {
		u.Preferences = make(map[string]any)
	}
	u.Preferences[key] = val
	return u
}

// NormalizeEmail lower-cases and trims an email for the
// case-insensitive uniqueness the store enforces.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the profile fields a user may change. Role and
// workspace are administrator-only mutations handled elsewhere.
type ProfileUpdate struct {
	FullName    *string        `json:"full_name,omitempty"`
	Phone       *string        `json:"phone_number,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// RolePermission is one row of the authorization matrix. The store
// enforces at most one row per (role, workspace) pair; the resolver
// still unions duplicate rows defensively.
type RolePermission struct {
	bun.BaseModel      `bun:"table:role_permissions,alias:perm"`
	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role               Role       `bun:"user_role,notnull,unique:role_workspace" json:"user_role"`
	Workspace          Workspace  `bun:"workspace,notnull,unique:role_workspace" json:"workspace"`
	CanView            bool       `bun:"can_view,notnull,default:false" json:"can_view"`
	CanDownload        bool       `bun:"can_download,notnull,default:false" json:"can_download"`
	CanArchiveOthers   bool       `bun:"can_archive_others,notnull,default:false" json:"can_archive_others"`
	CanManageWorkspace bool       `bun:"can_manage_workspace,notnull,default:false" json:"can_manage_workspace"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Flags returns the capability booleans of the row.
func (p *RolePermission) Flags() PermissionFlags {
	return PermissionFlags{
		CanView:            p.CanView,
		CanDownload:        p.CanDownload,
		CanArchiveOthers:   p.CanArchiveOthers,
		CanManageWorkspace: p.CanManageWorkspace,
	}
}

// DocumentStatus is the lifecycle status of a document.
type DocumentStatus string

const (
	DocumentDraft    DocumentStatus = "draft"
	DocumentStored   DocumentStatus = "stored"
	DocumentArchived DocumentStatus = "archived"
)

// IsValid checks if the status is one of the lifecycle states
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentDraft, DocumentStored, DocumentArchived:
		return true
	default:
		return false
	}
}

func (s DocumentStatus) String() string {
	return string(s)
}

// Document is the slice of the document record the lifecycle state
// machine reasons about: status, owner, workspace, and the transition
// timestamps. File content and metadata live elsewhere.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:doc"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OwnerID       uuid.UUID      `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Workspace     Workspace      `bun:"workspace,notnull" json:"workspace,omitempty"`
	Status        DocumentStatus `bun:"status,notnull,default:'draft'" json:"status,omitempty"`
	StoredAt      *time.Time     `bun:"stored_at,nullzero" json:"stored_at,omitempty"`
	ArchivedAt    *time.Time     `bun:"archived_at,nullzero" json:"archived_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus defaults an empty status to draft.
func (d *Document) EnsureStatus() {
	if d.Status == "" {
		d.Status = DocumentDraft
	}
}

// IsOwnedBy reports whether the actor created the document.
func (d *Document) IsOwnedBy(actorID uuid.UUID) bool {
	return d != nil && actorID != uuid.Nil && d.OwnerID == actorID
}
