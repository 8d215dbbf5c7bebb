package handlers

import (
	"net/http"

	"subhive/internal/middleware"
	"subhive/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(svc *services.Services) *CommentHandler {
	return &CommentHandler{comments: svc.Comments}
}

// List GET /api/posts/:id/comments?sort=best|new|old
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	thread, err := h.comments.GetComments(c.Request.Context(), postID, c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body contentBody
	if !bindJSON(c, &body) {
		return
	}
	node, err := h.comments.Create(c.Request.Context(), middleware.CurrentUser(c), postID, body.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (h *CommentHandler) Reply(c *gin.Context) {
	parentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body contentBody
	if !bindJSON(c, &body) {
		return
	}
	node, err := h.comments.Reply(c.Request.Context(), middleware.CurrentUser(c), parentID, body.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (h *CommentHandler) Edit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body contentBody
	if !bindJSON(c, &body) {
		return
	}
	comment, err := h.comments.Edit(c.Request.Context(), middleware.CurrentUser(c), id, body.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete removes the comment and every reply below it.
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.comments.Delete(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
