package router

import (
	"net/http"

	"subhive/internal/handlers"
	"subhive/internal/middleware"
	"subhive/internal/services"
	"subhive/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const SessionName = "subhive_session"

// Use installs the middleware chain every route relies on.
func Use(r *gin.Engine, sessionStore sessions.Store, users store.UserStore) {
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(SessionName, sessionStore))
	r.Use(middleware.LoadUser(users))
}

func RegisterRoutes(r *gin.Engine, svc *services.Services, gatherer prometheus.Gatherer) {
	// Handlers
	authHandler := handlers.NewAuthHandler(svc)
	postHandler := handlers.NewPostHandler(svc)
	commentHandler := handlers.NewCommentHandler(svc)
	voteHandler := handlers.NewVoteHandler(svc)
	userHandler := handlers.NewUserHandler(svc)
	subredditHandler := handlers.NewSubredditHandler(svc)
	notificationHandler := handlers.NewNotificationHandler(svc)
	searchHandler := handlers.NewSearchHandler(svc)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/posts", postHandler.List)                    // 全站帖子 ?sort=&page=
	api.GET("/posts/:id", postHandler.Get)                 // 帖子详情
	api.GET("/posts/:id/comments", commentHandler.List)    // 评论树 ?sort=best|new|old
	api.GET("/r", subredditHandler.List)                   // 所有社区
	api.GET("/r/:name", subredditHandler.Get)              // 社区详情
	api.GET("/r/:name/posts", postHandler.ListBySubreddit) // 社区帖子
	api.GET("/u/:name", userHandler.Profile)               // 用户主页
	api.GET("/u/:name/posts", userHandler.Posts)           // 用户帖子
	api.GET("/u/:name/comments", userHandler.Comments)     // 用户评论
	api.GET("/search", searchHandler.Search)               // 搜索

	api.POST("/auth/register", authHandler.Register) // 注册
	api.POST("/auth/login", authHandler.Login)       // 登录
	api.POST("/auth/logout", authHandler.Logout)     // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/feed/home", postHandler.Home) // 已加入社区的帖子

		authorized.POST("/posts", postHandler.Create)                  // 发帖
		authorized.PUT("/posts/:id", postHandler.Update)               // 编辑帖子
		authorized.DELETE("/posts/:id", postHandler.Delete)            // 删除帖子
		authorized.POST("/posts/:id/status", postHandler.SetStatus)    // 版主隐藏/恢复
		authorized.POST("/posts/:id/save", postHandler.ToggleSaved)    // 收藏/取消收藏
		authorized.POST("/posts/:id/vote", voteHandler.VotePost)       // 帖子投票
		authorized.POST("/posts/:id/comments", commentHandler.Create)  // 发表评论
		authorized.POST("/comments/:id/replies", commentHandler.Reply) // 回复评论
		authorized.PUT("/comments/:id", commentHandler.Edit)           // 编辑评论
		authorized.DELETE("/comments/:id", commentHandler.Delete)      // 删除评论及其回复
		authorized.POST("/comments/:id/vote", voteHandler.VoteComment) // 评论投票

		authorized.POST("/r", subredditHandler.Create)            // 创建社区
		authorized.POST("/r/:name/join", subredditHandler.Join)   // 加入社区
		authorized.POST("/r/:name/leave", subredditHandler.Leave) // 退出社区

		authorized.GET("/me", userHandler.Me)                        // 当前用户
		authorized.GET("/me/karma", userHandler.KarmaLogs)           // 积分记录
		authorized.GET("/me/saved", postHandler.Saved)               // 我的收藏
		authorized.PUT("/u/:name", userHandler.UpdateBio)            // 修改简介
		authorized.POST("/u/:name/avatar", userHandler.UpdateAvatar) // 修改头像

		authorized.GET("/notifications", notificationHandler.List)              // 我的通知
		authorized.POST("/notifications/:id/read", notificationHandler.Read)    // 标记单条通知为已读
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll) // 全部通知标记为已读
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)     // 删除单条通知
	}
}
