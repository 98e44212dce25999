package router

import (
	"atelier-go/internal/api/handler"
	"atelier-go/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由
func Setup(
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	assetHandler *handler.AssetHandler,
	assetLikeHandler *handler.AssetLikeHandler,
	commentHandler *handler.CommentHandler,
	commentLikeHandler *handler.CommentLikeHandler,
	dropHandler *handler.DropHandler,
	searchHandler *handler.SearchHandler,
	realtimeHandler *handler.RealtimeHandler,
	adminMiddleware gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1")

	// --- 认证模块 ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		authRequired := auth.Group("", middleware.AuthRequired())
		{
			authRequired.POST("/logout", authHandler.Logout)
			authRequired.GET("/me", authHandler.Me)
		}
	}

	// --- 用户模块 ---
	users := v1.Group("/users")
	{
		users.GET("/:id", userHandler.GetUser)

		usersAuth := users.Group("", middleware.AuthRequired())
		{
			usersAuth.PUT("/:id", userHandler.UpdateUser)
		}
	}

	// --- 管理模块 ---
	admin := v1.Group("/admin", middleware.AuthRequired(), adminMiddleware)
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.DELETE("/users/:id", userHandler.SoftDeleteUser)
		admin.POST("/users/:id/restore", userHandler.RestoreUser)
		admin.POST("/users/:id/set-admin", userHandler.SetAdminRole)
	}

	// --- 资源模块 ---
	assets := v1.Group("/assets")
	{
		// 公开接口（登录可选，登录后附带个人状态）
		assets.GET("/feed", middleware.OptionalAuth(), assetHandler.Feed)
		assets.GET("/:id", middleware.OptionalAuth(), assetHandler.GetDetail)

		assetsAuth := assets.Group("", middleware.AuthRequired())
		{
			assetsAuth.POST("", assetHandler.Create)
			assetsAuth.POST("/:id/publish", assetHandler.Publish)
			assetsAuth.PUT("/:id", assetHandler.Update)
			assetsAuth.DELETE("/:id", assetHandler.Delete)
			assetsAuth.GET("/my/list", assetHandler.ListMy)

			assetsAuth.POST("/:id/like", assetLikeHandler.Like)
			assetsAuth.DELETE("/:id/like", assetLikeHandler.Unlike)
			assetsAuth.GET("/:id/like", assetLikeHandler.GetStatus)
			assetsAuth.GET("/my/likes", assetLikeHandler.ListMyLikes)
		}
	}

	// --- 评论模块 ---
	comments := v1.Group("/comments")
	{
		comments.GET("/asset/:asset_id", middleware.OptionalAuth(), commentHandler.ListByAsset)
		comments.GET("/:id/replies", middleware.OptionalAuth(), commentHandler.ListReplies)

		commentsAuth := comments.Group("", middleware.AuthRequired())
		{
			commentsAuth.POST("/:asset_id", commentHandler.Create)
			commentsAuth.PUT("/:id", commentHandler.Update)
			commentsAuth.DELETE("/:id", commentHandler.Delete)
			commentsAuth.GET("/my/list", commentHandler.ListMyComments)
		}
	}

	// --- 评论点赞模块 ---
	commentLikes := v1.Group("/comment-likes", middleware.AuthRequired())
	{
		commentLikes.POST("/:id", commentLikeHandler.Like)
		commentLikes.DELETE("/:id", commentLikeHandler.Unlike)
		commentLikes.GET("/:id/status", commentLikeHandler.GetStatus)
	}

	// --- 快讯模块 ---
	drops := v1.Group("/drops")
	{
		// 订阅、退订不需要账号
		drops.POST("/subscribe", dropHandler.Subscribe)
		drops.POST("/unsubscribe", dropHandler.Unsubscribe)

		dropsAuth := drops.Group("", middleware.AuthRequired())
		{
			dropsAuth.POST("", dropHandler.Create)
			dropsAuth.GET("", dropHandler.List)
			dropsAuth.GET("/:id", dropHandler.GetDetail)
			dropsAuth.PUT("/:id", dropHandler.Update)
			dropsAuth.DELETE("/:id", dropHandler.Delete)
			dropsAuth.POST("/:id/send", dropHandler.Send)
		}
	}

	// --- 搜索模块 ---
	search := v1.Group("/search")
	{
		search.GET("/assets", searchHandler.Search)
	}

	// --- 实时通道 ---
	// WebSocket 握手走查询参数鉴权（见 middleware.extractToken）
	ws := v1.Group("/ws", middleware.OptionalAuth())
	{
		ws.GET("/assets/:asset_id/comments", realtimeHandler.CommentLikes)
	}
}
