package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// SessionUserKey 是 session 中保存登录用户 id 的键
const SessionUserKey = "user_id"

// AuthRequired rejects requests without a loaded user. LoadUser must run first.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserKey).(uint)
		if ok && userID != 0 {
			user, err := users.Get(c.Request.Context(), userID)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
			case errors.Is(err, store.ErrNotFound):
				// 用户已被删除，清掉失效的 session
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				slog.Error("load session user", "user_id", userID, "error", err)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
