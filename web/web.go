// Package web assembles the gin engine, serves it over HTTP or HTTPS and
// schedules the background jobs.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/database"
	"github.com/nbazone/nbazone/database/store"
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/common"
	"github.com/nbazone/nbazone/web/controller"
	"github.com/nbazone/nbazone/web/entity"
	"github.com/nbazone/nbazone/web/job"
	"github.com/nbazone/nbazone/web/middleware"
	"github.com/nbazone/nbazone/web/network"
	"github.com/nbazone/nbazone/web/service"
	"github.com/nbazone/nbazone/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP API together with its scheduled jobs.
type Server struct {
	cfg *config.Config

	httpServer *http.Server
	listener   net.Listener

	players *service.PlayerService
	auth    *service.AuthService

	cron *cron.Cron
}

// NewServer wires the services onto the database opened by database.InitDB.
func NewServer(cfg *config.Config) *Server {
	db := database.GetDB()
	return &Server{
		cfg:     cfg,
		players: service.NewPlayerService(store.NewPlayerStore(db), cfg.Cache.TTL),
		auth:    service.NewAuthService(store.NewUserStore(db), cfg.Auth),
	}
}

func (s *Server) initRouter() *gin.Engine {
	if s.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("panic serving", c.Request.URL.Path, ":", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			entity.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred", c.Request.URL.Path))
	}))
	engine.Use(middleware.AccessLog())
	if s.cfg.Web.Domain != "" {
		engine.Use(middleware.DomainValidator(s.cfg.Web.Domain))
	}
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	cookie := session.Cookie{Name: s.cfg.Auth.CookieName, Secure: s.cfg.Auth.CookieSecure}
	engine.Use(middleware.JWTAuth(s.auth, cookie))

	api := engine.Group("/api")
	v1 := api.Group("/v1")
	controller.NewPlayerController(v1, s.players)
	controller.NewAdminController(v1.Group("/admin"))
	controller.NewAuthController(api.Group("/auth"), s.auth, cookie, s.cfg.Auth.SignInLimit)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, entity.NewErrorResponse(http.StatusNotFound, "No handler for "+c.Request.URL.Path, c.Request.URL.Path))
	})
	return engine
}

func (s *Server) startTask() {
	if s.cfg.Database.IsSQLite() {
		if _, err := s.cron.AddJob("@every 5m", job.NewCheckpointJob()); err != nil {
			logger.Warning("add checkpoint job failed:", err)
		}
	}
	if _, err := s.cron.AddJob("@every 1m", job.NewStatsLogJob()); err != nil {
		logger.Warning("add stats log job failed:", err)
	}
}

// Start listens on the configured address and begins serving in the background.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithSeconds())
	s.cron.Start()

	engine := s.initRouter()

	listenAddr := net.JoinHostPort(s.cfg.Web.Listen, strconv.Itoa(s.cfg.Web.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if s.cfg.Web.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(s.cfg.Web.CertFile, s.cfg.Web.KeyFile)
		if err != nil {
			_ = listener.Close()
			return err
		}
		listener = network.NewRedirectListener(listener)
		listener = tls.NewListener(listener, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		logger.Info("Web server running HTTPS on", listener.Addr())
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}

	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			err2 = err
		}
	}
	return common.Combine(err1, err2)
}
