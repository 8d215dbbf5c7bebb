package handlers

import (
	"net/http"

	"subhive/internal/middleware"
	"subhive/internal/models"
	"subhive/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(svc *services.Services) *AuthHandler {
	return &AuthHandler{users: svc.Users}
}

// startSession 登录成功后写入 session
func startSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	return errors.Wrap(session.Save(), "save session")
}

// Register 注册成功后直接登录
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := startSession(c, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &body) {
		return
	}
	user, err := h.users.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := startSession(c, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, errors.Wrap(err, "clear session"))
		return
	}
	c.Status(http.StatusNoContent)
}
