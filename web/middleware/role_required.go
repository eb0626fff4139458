package middleware

import (
	"net/http"

	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/web/entity"
	"github.com/nbazone/nbazone/web/session"

	"github.com/gin-gonic/gin"
)

// RoleRequired lets the request through when the principal holds one of roles.
// Anonymous requests get 401, authenticated ones without the role 403.
func RoleRequired(roles ...model.AppRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := session.GetPrincipal(c)
		if principal == nil {
			abort(c, http.StatusUnauthorized, "Full authentication is required to access this resource")
			return
		}
		if !principal.HasAnyRole(roles...) {
			abort(c, http.StatusForbidden, "Access is denied")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, entity.NewErrorResponse(status, msg, c.Request.URL.Path))
}
