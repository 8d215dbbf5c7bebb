package handlers

import (
	"log/slog"
	"net/http"

	"subhive/internal/middleware"
	"subhive/internal/services"
	"subhive/internal/utils"

	"github.com/gin-gonic/gin"
)

var statusByKind = map[services.ErrorKind]int{
	services.KindNotFound:        http.StatusNotFound,
	services.KindValidation:      http.StatusBadRequest,
	services.KindForbidden:       http.StatusForbidden,
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindConflict:        http.StatusConflict,
}

// respondError writes the JSON error body. Internal errors are logged and
// hidden from the client.
func respondError(c *gin.Context, err error) {
	if status, ok := statusByKind[services.KindOf(err)]; ok {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	slog.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString(middleware.RequestIDKey),
		"error", err,
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID parses a numeric path parameter, answering 400 itself on failure.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 itself on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

type contentBody struct {
	Content string `json:"content"`
}
