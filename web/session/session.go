// Package session carries the session token cookie and the request principal.
package session

import (
	"net/http"
	"time"

	"github.com/nbazone/nbazone/web/service"

	"github.com/gin-gonic/gin"
)

const (
	cookiePath   = "/api"
	principalKey = "PRINCIPAL"
)

// Cookie describes how the token cookie is written.
type Cookie struct {
	Name   string
	Secure bool
}

func (ck Cookie) Token(c *gin.Context) string {
	token, err := c.Cookie(ck.Name)
	if err != nil {
		return ""
	}
	return token
}

// SetToken stores token in an HttpOnly cookie that lives for maxAge.
func (ck Cookie) SetToken(c *gin.Context, token string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, token, int(maxAge.Seconds()), cookiePath, "", ck.Secure, true)
}

// Clear expires the token cookie immediately.
func (ck Cookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, "", -1, cookiePath, "", ck.Secure, true)
}

func SetPrincipal(c *gin.Context, p *service.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the authenticated principal, or nil.
func GetPrincipal(c *gin.Context) *service.Principal {
	if obj, ok := c.Get(principalKey); ok {
		if p, ok := obj.(*service.Principal); ok {
			return p
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetPrincipal(c) != nil
}
