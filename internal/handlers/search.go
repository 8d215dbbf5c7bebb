package handlers

import (
	"net/http"

	"subhive/internal/services"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(svc *services.Services) *SearchHandler {
	return &SearchHandler{search: svc.Search}
}

// Search GET /api/search?q=
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
