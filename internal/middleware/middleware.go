package middleware

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/auth"
	"github.com/emilythestrangee/tastemap/backend/internal/authz"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

const (
	RequestIDHeader = "X-Request-ID"

	contextClaimsKey    = "claims"
	contextTokenKey     = "token"
	contextTargetKey    = "authz_target"
	contextRequestIDKey = "request_id"
)

// RequestLogger tags every request with an id and logs it once it completes.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextRequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		attrs := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", c.ClientIP(),
		}
		if claims, ok := Claims(c); ok {
			attrs = append(attrs, "user_id", claims.UserID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "request completed", attrs...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "request completed", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "request completed", attrs...)
		}
	}
}

// Auth requires a live bearer token and stores its claims on the context.
// The claims' role is replaced by the user's current role.
func Auth(tokens *auth.Tokens, sessions auth.Sessions, roles auth.Roles) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperror.Respond(c, apperror.Unauthenticated("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			apperror.Respond(c, apperror.Unauthenticated("invalid authorization format"))
			return
		}
		tokenStr := strings.TrimSpace(parts[1])

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			apperror.Respond(c, apperror.Unauthenticated("invalid or expired token"))
			return
		}
		live, err := sessions.Active(c.Request.Context(), claims.UserID, claims.ID)
		if err != nil {
			apperror.Respond(c, apperror.Storage("failed to check session", err))
			return
		}
		if !live {
			apperror.Respond(c, apperror.Unauthenticated("token has been revoked"))
			return
		}

		role, err := roles.CurrentRole(c.Request.Context(), claims.UserID)
		switch {
		case errors.Is(err, auth.ErrUnknownUser):
			apperror.Respond(c, apperror.Unauthenticated("account no longer exists"))
			return
		case err != nil:
			apperror.Respond(c, apperror.Storage("failed to load account", err))
			return
		case role == models.RoleDeleted:
			apperror.Respond(c, apperror.Unauthenticated("account has been deleted"))
			return
		}
		current := *claims
		current.Role = role
		claims = &current

		c.Set(contextClaimsKey, claims)
		c.Set(contextTokenKey, tokenStr)
		c.Next()
	}
}

// Claims returns the verified token claims set by Auth.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(contextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// CurrentActor is the zero Actor, which authz denies everything, when the
// request is unauthenticated.
func CurrentActor(c *gin.Context) authz.Actor {
	claims, ok := Claims(c)
	if !ok {
		return authz.Actor{}
	}
	return authz.Actor{UserID: claims.UserID, Role: claims.Role}
}

// TargetLoader resolves the resource a request acts on. It returns a
// NotFound apperror when the resource does not exist.
type TargetLoader func(c *gin.Context) (authz.Target, error)

// Authorize runs after Auth. A missing resource answers 404 before the rule
// table is consulted; a denial answers 403.
func Authorize(action authz.Action, load TargetLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := load(c)
		if err != nil {
			apperror.Respond(c, err)
			return
		}
		if err := authz.Check(CurrentActor(c), action, target); err != nil {
			apperror.Respond(c, err)
			return
		}
		c.Set(contextTargetKey, target)
		c.Next()
	}
}

// AuthorizedTarget returns the target loaded by Authorize.
func AuthorizedTarget(c *gin.Context) (authz.Target, bool) {
	v, ok := c.Get(contextTargetKey)
	if !ok {
		return authz.Target{}, false
	}
	t, ok := v.(authz.Target)
	return t, ok
}

// Token returns the raw bearer token accepted by Auth.
func Token(c *gin.Context) string {
	return c.GetString(contextTokenKey)
}
