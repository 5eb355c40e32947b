package router

import (
	"remark-go/internal/api/handler"
	"remark-go/internal/api/middleware"
	"remark-go/internal/model"
	"remark-go/internal/service"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由
func Setup(
	r *gin.Engine,
	identityService *service.IdentityService,
	commentHandler *handler.CommentHandler,
	voteHandler *handler.VoteHandler,
	moderationHandler *handler.ModerationHandler,
	userHandler *handler.UserHandler,
) {
	v1 := r.Group("/api/v1")

	authRequired := middleware.AuthRequired(identityService)

	// --- 评论模块 ---
	comments := v1.Group("/comments")
	{
		// 公开接口（不需要登录）
		comments.GET("", commentHandler.List)
		comments.GET("/:id/thread", commentHandler.Thread)
		comments.GET("/:id/history", commentHandler.EditHistory)
		comments.GET("/:id/votes", voteHandler.Voters)

		// 需要登录的接口
		commentsAuth := comments.Group("", authRequired)
		{
			commentsAuth.POST("", commentHandler.Create)
			commentsAuth.PUT("/:id", commentHandler.Edit)
			commentsAuth.DELETE("/:id", commentHandler.Delete)
			commentsAuth.POST("/:id/votes", voteHandler.Cast)
			commentsAuth.GET("/:id/votes/me", voteHandler.MyVote)
			commentsAuth.POST("/:id/reports", moderationHandler.Report)

			// 版主接口
			mod := commentsAuth.Group("", middleware.RoleRequired(model.RoleModerator))
			{
				mod.POST("/:id/tags", commentHandler.Tag)
			}
		}
	}

	// --- 用户模块 ---
	users := v1.Group("/users")
	{
		users.GET("/leaderboard", userHandler.Leaderboard)
		users.GET("/:id", userHandler.Profile)

		usersAuth := users.Group("", authRequired)
		{
			usersAuth.GET("/me", userHandler.Me)
			usersAuth.GET("/me/ratelimit", userHandler.RateLimitStatus)
		}
	}

	// --- 管理模块 ---
	moderation := v1.Group("/moderation", authRequired)
	{
		modUsers := moderation.Group("/users")
		{
			// 警告需要版主，封禁类操作需要管理员；细粒度判定在服务层完成
			warn := modUsers.Group("", middleware.RoleRequired(model.RoleModerator))
			{
				warn.POST("/:id/warnings", moderationHandler.Warn)
				warn.GET("/:id/warnings", moderationHandler.Warnings)
			}

			admin := modUsers.Group("", middleware.RoleRequired(model.RoleAdmin))
			{
				admin.POST("/:id/ban", moderationHandler.Ban)
				admin.DELETE("/:id/ban", moderationHandler.Unban)
				admin.POST("/:id/shadow-ban", moderationHandler.ShadowBan)
				admin.PUT("/:id/role", moderationHandler.ChangeRole)
			}
		}
	}
}
