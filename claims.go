package docauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the claim discriminator that keeps refresh tokens from
// being accepted where access tokens are required, and vice versa.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// AuthClaims is the structured view of a verified session credential.
type AuthClaims interface {
	UserID() string
	Email() string
	Role() Role
	Workspace() Workspace
	Type() TokenType
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID           string    `json:"uid,omitempty"`
	UserEmail     string    `json:"email,omitempty"`
	UserRole      Role      `json:"role,omitempty"`
	UserWorkspace Workspace `json:"workspace,omitempty"`
	TokenUse      TokenType `json:"typ,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the subject user id
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the subject email
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the subject role
func (c *JWTClaims) Role() Role {
	return c.UserRole
}

// Workspace returns the subject's home workspace
func (c *JWTClaims) Workspace() Workspace {
	return c.UserWorkspace
}

// Type returns the token-type discriminator
func (c *JWTClaims) Type() TokenType {
	return c.TokenUse
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
