package handlers

import (
	"net/http"

	"subhive/internal/middleware"
	"subhive/internal/services"
	"subhive/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
	feed  *services.FeedService
	karma *services.KarmaService
}

func NewUserHandler(svc *services.Services) *UserHandler {
	return &UserHandler{users: svc.Users, feed: svc.Feed, karma: svc.Karma}
}

// Me 当前用户，带未读通知数
func (h *UserHandler) Me(c *gin.Context) {
	me, err := h.users.Me(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// Profile - 用户主页 /api/u/:name
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Posts(c *gin.Context) {
	page, err := h.feed.ListByAuthor(c.Request.Context(), c.Param("name"), c.Query("sort"), utils.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Comments(c *gin.Context) {
	comments, err := h.users.Comments(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *UserHandler) UpdateBio(c *gin.Context) {
	var body struct {
		Bio string `json:"bio"`
	}
	if !bindJSON(c, &body) {
		return
	}
	user, err := h.users.UpdateBio(c.Request.Context(), middleware.CurrentUser(c), c.Param("name"), body.Bio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	var body struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if !bindJSON(c, &body) {
		return
	}
	user, err := h.users.UpdateAvatar(c.Request.Context(), middleware.CurrentUser(c), c.Param("name"), body.AvatarURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// KarmaLogs 积分记录
func (h *UserHandler) KarmaLogs(c *gin.Context) {
	logs, err := h.karma.Logs(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
