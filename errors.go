package docauth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API consumers alongside the error category.
const (
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeAccountDisabled     = "ACCOUNT_DISABLED"
	TextCodeNoPasswordSet       = "NO_PASSWORD_SET"
	TextCodeEmailExists         = "EMAIL_ALREADY_EXISTS"
	TextCodeWeakPassword        = "WEAK_PASSWORD"
	TextCodeInsufficientPerms   = "INSUFFICIENT_PERMISSIONS"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenInvalid        = "TOKEN_INVALID"
	TextCodeTokenRevoked        = "TOKEN_REVOKED"
	TextCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	TextCodeNotOwnerNoPerm      = "NOT_OWNER_AND_NO_PERMISSION"
	TextCodeIllegalTransition   = "ILLEGAL_TRANSITION"
	TextCodeHashingFailure      = "HASHING_ERROR"
	TextCodeTooManyAttempts     = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
)

// ErrInvalidCredentials covers unknown email, inactive account, and
// password mismatch alike so callers cannot enumerate users.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when an authenticated flow hits a
// deactivated account.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeForbidden)

// ErrNoPasswordSet is returned when the account exists but password
// login has been disabled (null password hash).
var ErrNoPasswordSet = errors.New("password login is not enabled for this account", errors.CategoryAuth).
	WithTextCode(TextCodeNoPasswordSet).
	WithCode(errors.CodeUnauthorized)

// ErrEmailAlreadyExists is returned on duplicate registration.
var ErrEmailAlreadyExists = errors.New("email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)

// ErrWeakPassword is returned when the strength validator rejects a
// password; metadata carries the violation list.
var ErrWeakPassword = errors.New("password does not meet strength requirements", errors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword).
	WithCode(errors.CodeBadRequest)

// ErrInsufficientPermissions is returned when the requesting actor is
// not allowed to perform an administrative operation.
var ErrInsufficientPermissions = errors.New("insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientPerms).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned when a token is past its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid is returned when signature or shape verification
// fails, or when the token-type discriminator is wrong.
var ErrTokenInvalid = errors.New("token is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenRevoked is returned for tokens present in the revocation set,
// regardless of remaining natural lifetime.
var ErrTokenRevoked = errors.New("token has been revoked", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidRefreshToken collapses every refresh verification failure
// (expired, revoked, malformed, unknown or inactive subject).
var ErrInvalidRefreshToken = errors.New("refresh token is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(errors.CodeUnauthorized)

// ErrNotOwnerAndNoPermission is returned when a document transition is
// attempted by an actor that neither owns the document nor holds the
// workspace capability the transition requires.
var ErrNotOwnerAndNoPermission = errors.New("actor is not the owner and has no workspace permission", errors.CategoryAuthz).
	WithTextCode(TextCodeNotOwnerNoPerm).
	WithCode(errors.CodeForbidden)

// ErrIllegalTransition is returned for document status changes the
// lifecycle state machine does not permit.
var ErrIllegalTransition = errors.New("illegal document status transition", errors.CategoryValidation).
	WithTextCode(TextCodeIllegalTransition).
	WithCode(errors.CodeBadRequest)

// ErrHashingFailure is an infrastructure fault from the password
// hashing primitive, never attributable to user input.
var ErrHashingFailure = errors.New("password hashing failed", errors.CategoryInternal).
	WithTextCode(TextCodeHashingFailure).
	WithCode(errors.CodeInternal)

// ErrTooManyLoginAttempts is returned when the per-user login throttle
// rejects the attempt.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrNoEmptyPassword rejects empty plaintext before it reaches bcrypt.
var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// cloneWithMeta copies a sentinel and attaches metadata, keeping the
// sentinel reachable through Source so errors.Is still matches it.
func cloneWithMeta(base *errors.Error, meta map[string]any) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Source = base
	return clone.WithMetadata(meta)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired) ||
		errContains(err, "token is expired")
}

// IsTokenRevokedError will check for revoked tokens
func IsTokenRevokedError(err error) bool {
	return hasTextCode(err, TextCodeTokenRevoked)
}

// IsTokenInvalidError will check for malformed or badly signed tokens
func IsTokenInvalidError(err error) bool {
	return hasTextCode(err, TextCodeTokenInvalid) ||
		errContains(err, "token is malformed")
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

func errContains(err error, fragment string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), fragment)
}
