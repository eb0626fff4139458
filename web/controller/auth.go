package controller

import (
	"net/http"
	"time"

	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/web/entity"
	"github.com/nbazone/nbazone/web/middleware"
	"github.com/nbazone/nbazone/web/service"
	"github.com/nbazone/nbazone/web/session"

	"github.com/gin-gonic/gin"
)

// AuthController serves sign in, sign up and the current-user routes under /api/auth.
type AuthController struct {
	auth   *service.AuthService
	cookie session.Cookie
}

func NewAuthController(g *gin.RouterGroup, auth *service.AuthService, cookie session.Cookie, signInLimit int) *AuthController {
	a := &AuthController{auth: auth, cookie: cookie}
	a.initRouter(g, signInLimit)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup, signInLimit int) {
	g.POST("/signin", middleware.SignInRateLimit(signInLimit, time.Minute), a.signIn)
	g.POST("/signup", a.signUp)
	g.POST("/signout", a.signOut)
	g.GET("/username", a.username)
	g.GET("/user", a.user)
}

func (a *AuthController) signIn(c *gin.Context) {
	req := &entity.LoginRequest{}
	if !bindJSON(c, req) {
		return
	}

	principal, token, err := a.auth.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Warningf("failed sign in for %q from %s", req.Username, c.ClientIP())
		writeError(c, err)
		return
	}

	a.cookie.SetToken(c, token, a.auth.Expiration())
	c.JSON(http.StatusOK, entity.UserInfoResponse{
		Id:       principal.UserId,
		Username: principal.Username,
		Roles:    principal.RoleNames(),
		Token:    token,
	})
}

func (a *AuthController) signUp(c *gin.Context) {
	req := &entity.SignupRequest{}
	if !bindJSON(c, req) {
		return
	}
	if _, err := a.auth.SignUp(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "User registered successfully!"})
}

func (a *AuthController) signOut(c *gin.Context) {
	if p := session.GetPrincipal(c); p != nil {
		logger.Infof("%s signed out", p.Username)
	}
	a.cookie.Clear(c)
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "You've been signed out!"})
}

// username answers the principal's name as plain text, empty when anonymous.
func (a *AuthController) username(c *gin.Context) {
	name := ""
	if p := session.GetPrincipal(c); p != nil {
		name = p.Username
	}
	c.String(http.StatusOK, name)
}

func (a *AuthController) user(c *gin.Context) {
	if !session.IsLogin(c) {
		writeError(c, &service.Error{Kind: service.ErrUnauthenticated, Msg: "Full authentication is required to access this resource"})
		return
	}
	p := session.GetPrincipal(c)
	c.JSON(http.StatusOK, entity.UserInfoResponse{
		Id:       p.UserId,
		Username: p.Username,
		Roles:    p.RoleNames(),
	})
}
