package handlers

import (
	"net/http"

	"subhive/internal/middleware"
	"subhive/internal/services"

	"github.com/gin-gonic/gin"
)

type SubredditHandler struct {
	subreddits *services.SubredditService
}

func NewSubredditHandler(svc *services.Services) *SubredditHandler {
	return &SubredditHandler{subreddits: svc.Subreddits}
}

func (h *SubredditHandler) List(c *gin.Context) {
	subs, err := h.subreddits.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *SubredditHandler) Get(c *gin.Context) {
	sub, err := h.subreddits.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubredditHandler) Create(c *gin.Context) {
	var in services.CreateSubredditInput
	if !bindJSON(c, &in) {
		return
	}
	sub, err := h.subreddits.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *SubredditHandler) Join(c *gin.Context) {
	sub, err := h.subreddits.Join(c.Request.Context(), middleware.CurrentUser(c), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubredditHandler) Leave(c *gin.Context) {
	sub, err := h.subreddits.Leave(c.Request.Context(), middleware.CurrentUser(c), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
