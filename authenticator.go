package docauth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// LoginRequest is the credential payload for Login.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// RegisterRequest is the payload for administrator-driven registration.
type RegisterRequest struct {
	Email     string    `form:"email" json:"email"`
	FullName  string    `form:"full_name" json:"full_name"`
	Phone     string    `form:"phone_number" json:"phone_number"`
	Role      Role      `form:"user_role" json:"user_role"`
	Workspace Workspace `form:"workspace" json:"workspace"`
	Password  string    `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber)),
		validation.Field(&r.Role, validation.Required, validation.By(validRole)),
		validation.Field(&r.Workspace, validation.Required, validation.By(validWorkspace)),
		validation.Field(&r.Password, validation.Required),
	)
}

func validRole(value any) error {
	role, _ := value.(Role)
	if !role.IsValid() {
		return errors.New("must be a known role", errors.CategoryValidation)
	}
	return nil
}

func validWorkspace(value any) error {
	workspace, _ := value.(Workspace)
	if !workspace.IsValid() {
		return errors.New("must be a known workspace", errors.CategoryValidation)
	}
	return nil
}

// ValidatePhoneNumber accepts an empty value or a valid E.164 number.
func ValidatePhoneNumber(value any) error {
	phone, _ := value.(string)
	if phone == "" {
		return nil
	}

	parsed, err := phonenumbers.Parse(phone, "ZZ")
	if err != nil {
		return errors.New("must be an international phone number", errors.CategoryValidation)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return errors.New("must be a valid phone number", errors.CategoryValidation)
	}
	return nil
}

// FormatPhoneNumber normalizes a validated number to E.164 for storage.
func FormatPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(phone, "ZZ")
	if err != nil {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// Profile is the authenticated self view: the user record plus the
// resolved workspace grants for its role.
type Profile struct {
	User   *User           `json:"user"`
	Grants WorkspaceGrants `json:"grants"`
}

// Session is the outcome of a successful login or registration: the
// user record together with its freshly issued token pair.
type Session struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// Authenticator orchestrates the session lifecycle: registration,
// login, token refresh, logout, and profile resolution. It owns no
// storage; users come from the injected UserStore and capability
// answers from the injected resolver.
type Authenticator struct {
	users    UserStore
	tokens   TokenService
	resolver *PermissionResolver
	hasher   *Hasher
	policy   *PasswordPolicy
	throttle *LoginThrottle
	logger   Logger

	enforcePolicy bool
	now           func() time.Time
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users UserStore, tokens TokenService, resolver *PermissionResolver, config Config) *Authenticator {
	return &Authenticator{
		users:         users,
		tokens:        tokens,
		resolver:      resolver,
		hasher:        NewHasher(config.GetBcryptCost()),
		policy:        DefaultPasswordPolicy(),
		throttle:      NewLoginThrottle(),
		logger:        defLogger{},
		enforcePolicy: config.GetEnforcePasswordPolicy(),
		now:           time.Now,
	}
}

func (s *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithPasswordPolicy overrides the default strength policy.
func (s *Authenticator) WithPasswordPolicy(policy *PasswordPolicy) *Authenticator {
	if policy != nil {
		s.policy = policy
	}
	return s
}

// WithLoginThrottle overrides the default per-account throttle.
func (s *Authenticator) WithLoginThrottle(throttle *LoginThrottle) *Authenticator {
	if throttle != nil {
		s.throttle = throttle
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *Authenticator) WithClock(clock func() time.Time) *Authenticator {
	if clock != nil {
		s.now = clock
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Authenticator) TokenService() TokenService {
	return s.tokens
}

// Login verifies credentials and returns the user with a fresh token
// pair. Unknown email, wrong password, and deactivated account all come
// back as ErrInvalidCredentials; the cases are indistinguishable to the
// caller.
func (s *Authenticator) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid login request").
			WithCode(errors.CodeBadRequest)
	}

	email := NormalizeEmail(req.Email)

	if !s.throttle.Allow(email) {
		s.logger.Warn("Login throttled for %s", email)
		return nil, ErrTooManyLoginAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			// Burn a hash comparison so a miss costs the same as a mismatch.
			s.hasher.dummyCompare(req.Password)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login user lookup error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "login lookup failed")
	}

	if !user.HasPassword() {
		s.hasher.dummyCompare(req.Password)
		if !user.IsActive {
			return nil, ErrInvalidCredentials
		}
		return nil, ErrNoPasswordSet
	}

	if err := s.hasher.ComparePasswordAndHash(req.Password, *user.PasswordHash); err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	s.throttle.Reset(email)

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		// Login still succeeds; the timestamp is best effort.
		s.logger.Warn("Login could not update last_login_at for %s: %v", user.ID, err)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.logger.Error("Login token issue error: %v", err)
		return nil, err
	}

	return &Session{User: user, Tokens: pair}, nil
}

// Register creates an account and returns it with its initial token
// pair. Only administrators may call it; there is no self-service
// signup.
func (s *Authenticator) Register(ctx context.Context, actorRole Role, req RegisterRequest) (*Session, error) {
	if actorRole != RoleAdministrator {
		return nil, cloneWithMeta(ErrInsufficientPermissions, map[string]any{
			"actor_role": actorRole.String(),
		})
	}

	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid registration request").
			WithCode(errors.CodeBadRequest)
	}

	email := NormalizeEmail(req.Email)

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailAlreadyExists
	} else if err != nil && !errors.IsNotFound(err) {
		s.logger.Error("Register user lookup error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "registration lookup failed")
	}

	if s.enforcePolicy {
		report := s.policy.Validate(req.Password, PolicyContext{
			Email:    email,
			FullName: req.FullName,
		})
		if !report.Valid {
			return nil, cloneWithMeta(ErrWeakPassword, map[string]any{
				"violations": report.Violations,
			})
		}
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        email,
		FullName:     req.FullName,
		Phone:        FormatPhoneNumber(req.Phone),
		Role:         req.Role,
		Workspace:    req.Workspace,
		PasswordHash: &hash,
		IsActive:     true,
	}

	if id, err := hashid.NewUUID(email); err == nil {
		user.ID = id
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.logger.Error("Register create error: %v", err)
		return nil, err
	}

	pair, err := s.tokens.IssuePair(created)
	if err != nil {
		s.logger.Error("Register token issue error: %v", err)
		return nil, err
	}

	return &Session{User: created, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a fresh pair. Every failure
// mode collapses into ErrInvalidRefreshToken: expired, revoked,
// malformed, unknown subject, deactivated account. The presented
// refresh token stays valid until its own expiry or an explicit logout.
func (s *Authenticator) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.logger.Debug("Refresh token rejected: %v", err)
		return nil, s.invalidRefresh(err)
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, s.invalidRefresh(err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, s.invalidRefresh(err)
		}
		s.logger.Error("Refresh user lookup error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "refresh lookup failed")
	}

	if !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.logger.Error("Refresh token issue error: %v", err)
		return nil, err
	}

	return pair, nil
}

func (s *Authenticator) invalidRefresh(cause error) error {
	return errors.Wrap(cause, ErrInvalidRefreshToken.Category, ErrInvalidRefreshToken.Message).
		WithTextCode(ErrInvalidRefreshToken.TextCode).
		WithCode(errors.CodeUnauthorized)
}

// Logout revokes the tokens of a session. At least one token must be
// presented; beyond that, tokens that are already invalid or already
// revoked are ignored, so logout is idempotent.
func (s *Authenticator) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" && refreshToken == "" {
		return errors.New("logout requires at least one token", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	s.tokens.Revoke(accessToken)
	s.tokens.Revoke(refreshToken)

	return nil
}

// GetProfile returns the user record with its resolved workspace
// grants. The password hash never leaves the store layer serialized.
// Deactivated accounts have no profile.
func (s *Authenticator) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	profile := &Profile{User: user}
	if s.resolver != nil {
		profile.Grants = s.resolver.Resolve(user.Role)
	}

	return profile, nil
}

// UpdateProfile applies self-service profile changes. Role, workspace,
// and credentials are out of scope here.
func (s *Authenticator) UpdateProfile(ctx context.Context, userID uuid.UUID, changes ProfileUpdate) (*User, error) {
	if changes.Phone != nil && *changes.Phone != "" {
		if err := ValidatePhoneNumber(*changes.Phone); err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid profile update").
				WithCode(errors.CodeBadRequest)
		}
		formatted := FormatPhoneNumber(*changes.Phone)
		changes.Phone = &formatted
	}

	if changes.FullName != nil {
		if err := validation.Validate(*changes.FullName, validation.Required, validation.Length(1, 200)); err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid profile update").
				WithCode(errors.CodeBadRequest)
		}
	}

	return s.users.UpdateProfileFields(ctx, userID, changes)
}

// CanUserPerformAction answers a capability question for a stored user.
// A deactivated user can do nothing. With no workspace it asks whether
// the user holds the action in any workspace at all.
func (s *Authenticator) CanUserPerformAction(ctx context.Context, userID uuid.UUID, action Action, workspaces ...Workspace) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if !user.IsActive {
		return false, nil
	}

	if s.resolver == nil {
		return false, nil
	}

	return s.resolver.CanPerform(user.Role, action, workspaces...), nil
}
