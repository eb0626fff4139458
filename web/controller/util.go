// Package controller binds the HTTP routes to the player and auth services
// and translates service errors into the JSON error body.
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/web/entity"
	"github.com/nbazone/nbazone/web/service"

	"github.com/gin-gonic/gin"
)

const internalErrorMsg = "An unexpected error occurred"

// writeError maps err onto a status and writes the error body. Errors of no
// known kind are logged and answered with a generic 500.
func writeError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		serr *service.Error
	)
	path := c.Request.URL.Path

	switch {
	case errors.As(err, &verr):
		resp := entity.NewErrorResponse(http.StatusBadRequest, "Validation failed", path)
		resp.Error = "Validation Error"
		resp.ValidationErrors = verr.Fields
		c.JSON(http.StatusBadRequest, resp)
		return
	case errors.As(err, &serr):
		status, label := kindStatus(serr.Kind)
		resp := entity.NewErrorResponse(status, serr.Msg, path)
		if label != "" {
			resp.Error = label
		}
		c.JSON(status, resp)
		return
	}

	logger.Errorf("%s %s failed: %v", c.Request.Method, path, err)
	c.JSON(http.StatusInternalServerError, entity.NewErrorResponse(http.StatusInternalServerError, internalErrorMsg, path))
}

func kindStatus(kind error) (int, string) {
	switch kind {
	case service.ErrPlayerNotFound:
		return http.StatusNotFound, "Player Not Found"
	case service.ErrTeamNotFound:
		return http.StatusNotFound, "Team Not Found"
	case service.ErrBadCredentials, service.ErrUnauthenticated:
		return http.StatusUnauthorized, ""
	case service.ErrForbidden:
		return http.StatusForbidden, ""
	case service.ErrConflict:
		return http.StatusConflict, ""
	default:
		return http.StatusInternalServerError, ""
	}
}

// badRequest answers 400 for input that could not be read at all.
func badRequest(c *gin.Context, field, msg string) {
	resp := entity.NewErrorResponse(http.StatusBadRequest, "Malformed request", c.Request.URL.Path)
	resp.Error = "Validation Error"
	resp.ValidationErrors = map[string]string{field: msg}
	c.JSON(http.StatusBadRequest, resp)
}

func paramInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		badRequest(c, name, "must be a number")
		return 0, false
	}
	return n, true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id", "must be a number")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body into obj, answering 400 when it is not valid JSON.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		badRequest(c, "body", "must be a valid JSON document")
		return false
	}
	return true
}
