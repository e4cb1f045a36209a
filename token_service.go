package docauth

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService issues, verifies, and revokes session credentials.
// Tokens are stateless and self-verifying; the only stateful piece is
// the injected revocation list, which exists purely to support early
// logout before natural expiry.
type TokenService interface {
	IssuePair(user *User) (*TokenPair, error)
	VerifyAccess(token string) (AuthClaims, error)
	VerifyRefresh(token string) (AuthClaims, error)
	Revoke(token string)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	revoked    *RevocationList
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, accessTTL, refreshTTL time.Duration, issuer string, revoked *RevocationList, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if revoked == nil {
		revoked = NewRevocationList()
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		revoked:    revoked,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock injects a custom clock (useful for tests).
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// RevocationList exposes the injected revocation set.
func (ts *TokenServiceImpl) RevocationList() *RevocationList {
	return ts.revoked
}

// IssuePair mints an access/refresh pair with distinct expiries and the
// type discriminator embedded in the claims.
func (ts *TokenServiceImpl) IssuePair(user *User) (*TokenPair, error) {
	if user == nil {
		return nil, errors.New("user must not be nil", errors.CategoryInternal)
	}

	access, err := ts.mint(user, TokenTypeAccess, ts.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := ts.mint(user, TokenTypeRefresh, ts.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(ts.accessTTL / time.Second),
	}, nil
}

// VerifyAccess validates an access token: revocation first, then
// signature, expiry, and the type discriminator.
func (ts *TokenServiceImpl) VerifyAccess(token string) (AuthClaims, error) {
	return ts.verify(token, TokenTypeAccess)
}

// VerifyRefresh validates a refresh token.
func (ts *TokenServiceImpl) VerifyRefresh(token string) (AuthClaims, error) {
	return ts.verify(token, TokenTypeRefresh)
}

// Revoke inserts the token into the revocation set, keyed until its
// embedded expiry. Idempotent; revocation is terminal.
func (ts *TokenServiceImpl) Revoke(token string) {
	if token == "" {
		return
	}
	ts.revoked.Revoke(token, ts.tokenExpiry(token))
}

func (ts *TokenServiceImpl) mint(user *User, use TokenType, ttl time.Duration) (string, error) {
	now := ts.now()

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UID:           user.ID.String(),
		UserEmail:     user.Email,
		UserRole:      user.Role,
		UserWorkspace: user.Workspace,
		TokenUse:      use,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// verify checks revocation before trusting any claim, so a revoked
// token can never pass authorization elsewhere.
func (ts *TokenServiceImpl) verify(tokenString string, expected TokenType) (AuthClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	if ts.revoked.IsRevoked(tokenString) {
		return nil, ErrTokenRevoked
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService verify could not decode claims")
		return nil, ErrTokenInvalid
	}

	if claims.TokenUse != expected {
		return nil, cloneWithMeta(ErrTokenInvalid, map[string]any{
			"expected_type": string(expected),
			"token_type":    string(claims.TokenUse),
		})
	}

	return claims, nil
}

// tokenExpiry extracts the embedded expiry without validating the
// token; a token we cannot parse is kept for the longest configured
// lifetime so revocation still sticks.
func (ts *TokenServiceImpl) tokenExpiry(tokenString string) time.Time {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := &JWTClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err == nil {
		if exp := claims.Expires(); !exp.IsZero() {
			return exp
		}
	}

	ttl := ts.refreshTTL
	if ts.accessTTL > ttl {
		ttl = ts.accessTTL
	}
	return ts.now().Add(ttl)
}

// ExtractTokenFromHeader parses an `Authorization: Bearer <token>`
// header value. Absence or a malformed shape yields ok == false, not an
// error: many callers treat a missing token as anonymous.
func ExtractTokenFromHeader(headerValue string) (string, bool) {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" {
		return "", false
	}

	const scheme = "Bearer"
	if len(headerValue) <= len(scheme)+1 || !strings.EqualFold(headerValue[:len(scheme)], scheme) {
		return "", false
	}
	if headerValue[len(scheme)] != ' ' {
		return "", false
	}

	token := strings.TrimSpace(headerValue[len(scheme)+1:])
	if token == "" {
		return "", false
	}

	return token, true
}
