// Package http 组装gin路由和中间件
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
)

// NewRouter 创建gin引擎并注册全部路由
//
// 中间件顺序：Recovery → Logger → Tracing → Metrics → CORS → RateLimit → Timeout → (RequireAuth) → Handler
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *middleware.AuthMiddleware,
	bookHandler *handler.BookHandler,
	reviewHandler *handler.ReviewHandler,
	userHandler *handler.UserHandler,
) *gin.Engine {
	r := gin.New()

	// 1. 全局中间件
	r.Use(
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.Metrics(),
	)
	if cfg.CORS.Enabled {
		r.Use(middleware.CORS(cfg.CORS))
	}
	if cfg.Server.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst).Middleware())
	}
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 2. 系统路由
	r.GET("/", handler.Index)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := authMiddleware.RequireAuth()

	// 3. 认证（公开）
	auth := r.Group("/auth")
	{
		auth.POST("/signup", userHandler.Signup)
		auth.POST("/login", userHandler.Login)
	}

	// 4. 图书
	// /books/search是静态路由，优先于/books/:id
	books := r.Group("/books")
	{
		books.GET("", bookHandler.ListBooks)
		books.GET("/search", bookHandler.SearchBooks)
		books.GET("/:id", bookHandler.GetBook)
		books.POST("", requireAuth, bookHandler.CreateBook)
		books.POST("/:id/reviews", requireAuth, reviewHandler.CreateReview)
	}

	// 5. 评论（需要登录）
	reviews := r.Group("/reviews", requireAuth)
	{
		reviews.PUT("/:id", reviewHandler.UpdateReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
	}

	return r
}
