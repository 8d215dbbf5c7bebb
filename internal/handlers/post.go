package handlers

import (
	"net/http"

	"subhive/internal/middleware"
	"subhive/internal/services"
	"subhive/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	feed  *services.FeedService
	posts *services.PostService
}

func NewPostHandler(svc *services.Services) *PostHandler {
	return &PostHandler{feed: svc.Feed, posts: svc.Posts}
}

func (h *PostHandler) listFeed(c *gin.Context, q services.FeedQuery) {
	q.Sort = c.Query("sort")
	q.Page = utils.ParsePage(c.Query("page"))
	page, err := h.feed.ListFeed(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// List GET /api/posts 全站帖子
func (h *PostHandler) List(c *gin.Context) {
	h.listFeed(c, services.FeedQuery{})
}

// ListBySubreddit GET /api/r/:name/posts
func (h *PostHandler) ListBySubreddit(c *gin.Context) {
	h.listFeed(c, services.FeedQuery{Subreddit: c.Param("name")})
}

// Home GET /api/feed/home 已加入社区的帖子
func (h *PostHandler) Home(c *gin.Context) {
	h.listFeed(c, services.FeedQuery{ViewerID: middleware.CurrentUser(c).ID})
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	var in services.CreatePostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !bindJSON(c, &body) {
		return
	}
	post, err := h.posts.Update(c.Request.Context(), middleware.CurrentUser(c), id, body.Title, body.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStatus POST /api/posts/:id/status 版主隐藏或恢复帖子
func (h *PostHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &body) {
		return
	}
	post, err := h.posts.SetStatus(c.Request.Context(), middleware.CurrentUser(c), id, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ToggleSaved 收藏/取消收藏
func (h *PostHandler) ToggleSaved(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	saved, err := h.posts.ToggleSaved(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (h *PostHandler) Saved(c *gin.Context) {
	posts, err := h.posts.ListSaved(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
