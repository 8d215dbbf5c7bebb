package handlers

import (
	"net/http"

	"subhive/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(svc *services.Services) *VoteHandler {
	return &VoteHandler{votes: svc.Votes}
}

func (h *VoteHandler) VotePost(c *gin.Context) {
	h.vote(c, services.VoteKindPost)
}

func (h *VoteHandler) VoteComment(c *gin.Context) {
	h.vote(c, services.VoteKindComment)
}

// vote 请求体 {"vote":"up"} 或 {"vote":"down"}，返回更新后的帖子或评论
func (h *VoteHandler) vote(c *gin.Context, kind services.VoteKind) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Vote string `json:"vote"`
	}
	if !bindJSON(c, &body) {
		return
	}
	result, err := h.votes.Vote(c.Request.Context(), string(kind), id, body.Vote)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Post != nil {
		c.JSON(http.StatusOK, result.Post)
		return
	}
	c.JSON(http.StatusOK, result.Comment)
}
