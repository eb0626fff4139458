// Package middleware holds the gin filters shared by every route: token
// authentication, role checks, sign-in rate limiting and access logging.
package middleware

import (
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/web/service"
	"github.com/nbazone/nbazone/web/session"

	"github.com/gin-gonic/gin"
)

// JWTAuth attaches the principal of a valid token cookie to the request.
// Requests without a usable token continue unauthenticated.
func JWTAuth(auth *service.AuthService, cookie session.Cookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Token(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := auth.ResolvePrincipal(c.Request.Context(), token)
		if err != nil {
			logger.Debugf("ignoring session token on %s: %v", c.Request.URL.Path, err)
			c.Next()
			return
		}
		session.SetPrincipal(c, principal)
		c.Next()
	}
}
