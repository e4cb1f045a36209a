// Package guard is the route middleware that authenticates a request
// from its bearer token and optionally enforces a workspace capability
// before the handler runs.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-docauth"
)

var (
	// ErrTokenMissingOrMalformed is reported when no bearer token can be
	// extracted from the request.
	ErrTokenMissingOrMalformed = errors.New("missing or malformed bearer token")
	// ErrCapabilityDenied is reported when the verified claims lack the
	// required workspace capability.
	ErrCapabilityDenied = errors.New("capability denied")
)

// TokenVerifier validates access tokens. Satisfied by
// docauth.TokenService.
type TokenVerifier interface {
	VerifyAccess(token string) (docauth.AuthClaims, error)
}

// Config configures the guard middleware.
type Config struct {
	// Filter skips the guard for matching requests.
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler

	// Verifier is required.
	Verifier TokenVerifier

	// Checker enables capability enforcement; leave nil to only
	// authenticate.
	Checker docauth.PermissionChecker

	// RequiredAction is the capability the route needs. Empty means
	// authentication only.
	RequiredAction docauth.Action
	// Workspace pins the capability check to a fixed workspace.
	Workspace docauth.Workspace
	// WorkspaceParam names a route parameter carrying the workspace;
	// used when Workspace is empty. When both are empty the claims'
	// home workspace is checked.
	WorkspaceParam string

	// ContextKey is the Locals key the verified claims are stored
	// under. Defaults to "user".
	ContextKey string

	// QueryParam optionally allows the token as a query parameter, for
	// download links that cannot carry headers.
	QueryParam string

	// ContextEnricher propagates claims to the standard context.
	// Defaults to docauth.WithClaimsContext.
	ContextEnricher func(context.Context, docauth.AuthClaims) context.Context

	// Debug dumps denied-request details to stdout.
	Debug bool
}

// New creates the middleware. It panics on a missing Verifier, matching
// how misconfiguration is surfaced at wiring time rather than per
// request.
func New(config ...Config) router.MiddlewareFunc {
	cfg := getDefaultConfig(config...)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, ok := extractToken(ctx, cfg)
			if !ok {
				return cfg.ErrorHandler(ctx, ErrTokenMissingOrMalformed)
			}

			claims, err := cfg.Verifier.VerifyAccess(raw)
			if err != nil {
				if cfg.Debug {
					fmt.Println(print.MaybePrettyJSON(map[string]any{
						"guard": "token rejected",
						"error": err.Error(),
					}))
				}
				return cfg.ErrorHandler(ctx, err)
			}

			if err := enforceCapability(ctx, cfg, claims); err != nil {
				if cfg.Debug {
					fmt.Println(print.MaybePrettyJSON(map[string]any{
						"guard":  "capability denied",
						"role":   claims.Role().String(),
						"action": cfg.RequiredAction.String(),
					}))
				}
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// RequireAction is a convenience constructor for a guard that enforces
// one capability against the workspace named in the route.
func RequireAction(verifier TokenVerifier, checker docauth.PermissionChecker, action docauth.Action, workspaceParam string) router.MiddlewareFunc {
	return New(Config{
		Verifier:       verifier,
		Checker:        checker,
		RequiredAction: action,
		WorkspaceParam: workspaceParam,
	})
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Verifier == nil {
		panic("GUARD: middleware configuration: Verifier is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = func(c context.Context, claims docauth.AuthClaims) context.Context {
			return docauth.WithClaimsContext(c, claims)
		}
	}

	return cfg
}

// DefaultErrorHandler maps guard failures onto plain status responses.
func DefaultErrorHandler(c router.Context, err error) error {
	switch {
	case errors.Is(err, ErrTokenMissingOrMalformed):
		return c.Status(router.StatusBadRequest).SendString(ErrTokenMissingOrMalformed.Error())
	case errors.Is(err, ErrCapabilityDenied):
		return c.Status(router.StatusForbidden).SendString("Insufficient permissions")
	default:
		return c.Status(router.StatusUnauthorized).SendString("Invalid or expired token")
	}
}

func extractToken(ctx router.Context, cfg Config) (string, bool) {
	if raw, ok := docauth.ExtractTokenFromHeader(ctx.GetString(router.HeaderAuthorization, "")); ok {
		return raw, true
	}

	if cfg.QueryParam != "" {
		if raw := ctx.Query(cfg.QueryParam, ""); raw != "" {
			return raw, true
		}
	}

	return "", false
}

func enforceCapability(ctx router.Context, cfg Config, claims docauth.AuthClaims) error {
	if cfg.RequiredAction == "" || cfg.Checker == nil {
		return nil
	}

	workspace := cfg.Workspace
	if workspace == "" && cfg.WorkspaceParam != "" {
		parsed, ok := docauth.ParseWorkspace(ctx.Param(cfg.WorkspaceParam))
		if !ok {
			return ErrCapabilityDenied
		}
		workspace = parsed
	}
	if workspace == "" {
		workspace = claims.Workspace()
	}

	if !cfg.Checker.CanPerform(claims.Role(), cfg.RequiredAction, workspace) {
		return ErrCapabilityDenied
	}

	return nil
}
