package auth

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/response"
)

const callerKey = "caller"

// Authenticate resolves the caller of every request. A request without a
// bearer token runs as the public caller; a token that fails verification
// is refused.
func Authenticate(v *Verifier) gin.HandlerFunc {
	log := logger.HTTP()

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(callerKey, scope.Public())
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.UnauthorizedError(c, "authorization header must be a bearer token")
			c.Abort()
			return
		}

		caller, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			log.Warn("rejected bearer token", "error", err, "path", c.FullPath())
			response.UnauthorizedError(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// RequireRole refuses callers whose role is not listed. Anonymous callers
// get 401, authenticated ones 403.
func RequireRole(roles ...scope.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if slices.Contains(roles, caller.Role) {
			c.Next()
			return
		}

		if caller.Role == scope.RolePublic {
			response.UnauthorizedError(c, "authentication required")
		} else {
			response.ForbiddenError(c, "role "+string(caller.Role)+" may not perform this action")
		}
		c.Abort()
	}
}

// CallerFrom returns the caller set by Authenticate, or the public caller.
func CallerFrom(c *gin.Context) scope.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(scope.Caller); ok {
			return caller
		}
	}
	return scope.Public()
}
