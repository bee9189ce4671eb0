package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	sessionIDKey = "session_id"
	userKey      = "auth_user"

	SessionHeader  = "X-Session-ID"
	SessionCookie  = "session_id"
	DefaultSession = "default"
)

// Authenticator resolves the identity of a request from its session and an
// optional bearer token.
type Authenticator func(ctx context.Context, sessionID, bearer string) (domain.RequestContext, error)

// Session resolves the shopper session: X-Session-ID header, then the
// session_id cookie, then "default".
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sid == "" {
			if v, err := c.Cookie(SessionCookie); err == nil {
				sid = strings.TrimSpace(v)
			}
		}
		if sid == "" {
			sid = DefaultSession
		}
		c.Set(sessionIDKey, sid)
		c.Writer.Header().Set(SessionHeader, sid)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless the session is logged in or a readable
// bearer token is sent.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth(c.Request.Context(), GetSessionID(c), BearerToken(c))
		if err != nil || !user.Authenticated() {
			msg := "login required"
			if err != nil && domain.IsUnauthorized(err) && BearerToken(c) != "" {
				msg = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      msg,
				"code":       "unauthorized",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func GetSessionID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if v, ok := c.Get(sessionIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// CurrentUser returns the identity set by RequireAuth.
func CurrentUser(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	u, ok := v.(domain.RequestContext)
	return u, ok
}
