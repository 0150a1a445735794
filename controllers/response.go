package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"freshfetch/middleware"
	"freshfetch/models"
	"freshfetch/repositories"
	"freshfetch/services"
	"freshfetch/utils"

	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{Success: true, Message: message, Data: data})
}

func badRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// handleError maps repository and service errors onto HTTP statuses.
func handleError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, repositories.ErrInvalidID):
		status, message = http.StatusBadRequest, "Invalid id"
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrTotalMismatch):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, "Access denied"
	case errors.Is(err, repositories.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, repositories.ErrDuplicate):
		status, message = http.StatusConflict, "Already exists"
	case errors.Is(err, repositories.ErrInsufficientStock), errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, repositories.ErrConflict), errors.Is(err, services.ErrIdempotencyKeyReused):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrUpstream):
		status, message = http.StatusBadGateway, "Upstream service error"
	case errors.Is(err, services.ErrUnavailable):
		status, message = http.StatusServiceUnavailable, "Service not configured"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Success: false, Message: message})
}

// principal returns the caller set by AuthMiddleware; routes without it get 401.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Unauthorized"})
	}
	return p, ok
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryPage(c *gin.Context) models.Page {
	return models.Page{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", models.DefaultPageLimit),
	}.Normalize()
}

func paginated(c *gin.Context, message string, data interface{}, page models.Page, total int64) {
	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    utils.BuildMeta(page, total),
	})
}
