package router

import (
	"time"

	"budget/api"
	"budget/config"
	_ "budget/docs"
	"budget/middleware"
	"budget/repository"
	"budget/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// loginAttempts 每个 IP 每分钟的登录/注册次数上限
const loginAttempts = 10

// SetupRouter 设置路由，notifier 为 nil 时不发送邀请通知
func SetupRouter(cfg *config.Config, store repository.Store, notifier service.Notifier) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	users := service.NewUserService(store)
	authHandler := api.NewAuthHandler(cfg, users)
	householdHandler := api.NewHouseholdHandler(service.NewHouseholdService(store, notifier))
	categoryHandler := api.NewCategoryHandler(service.NewCategoryService(store))
	accountHandler := api.NewAccountHandler(service.NewAccountService(store))
	transactionHandler := api.NewTransactionHandler(service.NewTransactionService(store))
	exportHandler := api.NewExportHandler(service.NewExportService(store))

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		auth := v1.Group("/auth")
		auth.Use(middleware.LoginRateLimit(loginAttempts, time.Minute))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)

			households := authorized.Group("/households")
			{
				households.POST("", householdHandler.Create)
				households.GET("", householdHandler.List)
				households.GET("/invitations", householdHandler.Invitations)
				households.GET("/:id", householdHandler.Get)
				households.PUT("/:id", householdHandler.Update)
				households.DELETE("/:id", householdHandler.Delete)
				households.POST("/:id/invite", householdHandler.Invite)
				households.POST("/:id/join", householdHandler.Join)
				households.POST("/:id/leave", householdHandler.Leave)
				households.GET("/:id/members", householdHandler.Members)

				households.GET("/:id/categories", categoryHandler.List)
				households.POST("/:id/categories", categoryHandler.Create)
				households.GET("/:id/accounts", accountHandler.List)
				households.POST("/:id/accounts", accountHandler.Create)
			}

			categories := authorized.Group("/categories")
			{
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			accounts := authorized.Group("/accounts")
			{
				accounts.GET("/:id", accountHandler.Get)
				accounts.PUT("/:id", accountHandler.Update)
				accounts.DELETE("/:id", accountHandler.Delete)
				accounts.POST("/:id/recalculate", accountHandler.Recalculate)
				accounts.GET("/:id/transactions", transactionHandler.List)
				accounts.POST("/:id/transactions", transactionHandler.Create)
				accounts.GET("/:id/export/csv", exportHandler.ExportCSV)
				accounts.GET("/:id/export/excel", exportHandler.ExportExcel)
			}

			transactions := authorized.Group("/transactions")
			{
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
				transactions.POST("/:id/void", transactionHandler.Void)
			}
		}
	}

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
