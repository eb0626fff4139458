package controller

import (
	"context"
	"net/http"

	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/web/entity"
	"github.com/nbazone/nbazone/web/middleware"
	"github.com/nbazone/nbazone/web/service"

	"github.com/gin-gonic/gin"
)

// PlayerController serves the player routes under /api/v1.
type PlayerController struct {
	players *service.PlayerService
}

func NewPlayerController(g *gin.RouterGroup, players *service.PlayerService) *PlayerController {
	a := &PlayerController{players: players}
	a.initRouter(g)
	return a
}

func (a *PlayerController) initRouter(g *gin.RouterGroup) {
	g.GET("/getAllPlayers", a.getAllPlayers)
	g.GET("/team/:team", a.getPlayersFromTeam)
	g.GET("/name/:name", a.getPlayersByName)
	g.GET("/age/:age", a.getPlayersByAge)
	g.GET("/age/page/:page/size/:size/direction/:direction", a.sortPlayersByAge)
	g.GET("/point/page/:page/size/:size/direction/:direction", a.sortPlayersByPoint)
	g.GET("/top10/:filter", a.topTenPlayersForFilter)

	g.POST("", a.addPlayer)

	admin := g.Group("", middleware.RoleRequired(model.RoleAdmin))
	admin.PUT("/update/:id", a.updatePlayer)
	admin.DELETE("/delete/:id", a.deletePlayer)
}

func (a *PlayerController) getAllPlayers(c *gin.Context) {
	players, err := a.players.GetPlayers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (a *PlayerController) getPlayersFromTeam(c *gin.Context) {
	players, err := a.players.GetPlayersFromTeam(c.Request.Context(), c.Param("team"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (a *PlayerController) getPlayersByName(c *gin.Context) {
	players, err := a.players.GetPlayersByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (a *PlayerController) getPlayersByAge(c *gin.Context) {
	age, ok := paramInt(c, "age")
	if !ok {
		return
	}
	players, err := a.players.GetPlayersByAge(c.Request.Context(), age)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (a *PlayerController) sortPlayersByAge(c *gin.Context) {
	a.sortedPage(c, a.players.SortPlayersByAge)
}

func (a *PlayerController) sortPlayersByPoint(c *gin.Context) {
	a.sortedPage(c, a.players.SortPlayersByPoint)
}

type pageFunc func(ctx context.Context, page, size int, direction string) (entity.Page[entity.PlayerResponse], error)

func (a *PlayerController) sortedPage(c *gin.Context, fn pageFunc) {
	page, ok := paramInt(c, "page")
	if !ok {
		return
	}
	size, ok := paramInt(c, "size")
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), page, size, c.Param("direction"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *PlayerController) topTenPlayersForFilter(c *gin.Context) {
	players, err := a.players.TopTenPlayersForFilter(c.Request.Context(), c.Param("filter"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (a *PlayerController) addPlayer(c *gin.Context) {
	req := &entity.PlayerRequest{}
	if !bindJSON(c, req) {
		return
	}
	player, err := a.players.AddPlayer(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (a *PlayerController) updatePlayer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	req := &entity.PlayerRequest{}
	if !bindJSON(c, req) {
		return
	}
	player, err := a.players.UpdatePlayer(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (a *PlayerController) deletePlayer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := a.players.DeletePlayer(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
