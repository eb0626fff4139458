package controller

import (
	"net/http"
	"strconv"

	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/metrics"
	"github.com/nbazone/nbazone/web/cache"
	"github.com/nbazone/nbazone/web/middleware"

	"github.com/gin-gonic/gin"
)

const (
	defaultLogCount = 100
	maxLogCount     = 10000
)

// AdminController exposes runtime counters and recent log lines to admins.
type AdminController struct{}

func NewAdminController(g *gin.RouterGroup) *AdminController {
	a := &AdminController{}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("", middleware.RoleRequired(model.RoleAdmin))
	g.GET("/stats", a.stats)
	g.GET("/logs", a.logs)
}

type statsResponse struct {
	*metrics.Status
	CacheHitRatio float64 `json:"cacheHitRatio"`
	CacheEmbedded bool    `json:"cacheEmbedded"`
}

func (a *AdminController) stats(c *gin.Context) {
	c.JSON(http.StatusOK, statsResponse{
		Status:        metrics.Collect(),
		CacheHitRatio: metrics.CacheHitRatio(),
		CacheEmbedded: cache.IsEmbedded(),
	})
}

// logs returns up to count buffered lines at or above level, newest first.
func (a *AdminController) logs(c *gin.Context) {
	count := defaultLogCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "count", "must be a positive number")
			return
		}
		count = min(n, maxLogCount)
	}
	c.JSON(http.StatusOK, logger.GetLogs(count, c.DefaultQuery("level", "info")))
}
