package router

import (
	"time"

	"pawly/config"
	"pawly/internal/handler"
	"pawly/internal/middleware"
	"pawly/internal/repository"
	"pawly/internal/service"
	"pawly/internal/sse"
	"pawly/internal/ws"
	"pawly/pkg/cloudinary"
	"pawly/pkg/mail"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators built in main and shared with the
// router. The dispatcher is exposed so main can drain it on shutdown.
type Deps struct {
	DB         *gorm.DB
	Cloud      cloudinary.Client
	Mailer     mail.Mailer
	Registry   *sse.Registry
	EventCache *sse.EventCache
	Dispatcher *service.Dispatcher
}

func Setup(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	memberRepo := repository.NewMemberRepository(deps.DB)
	petRepo := repository.NewPetRepository(deps.DB)
	articleRepo := repository.NewArticleRepository(deps.DB)
	chatRepo := repository.NewChatRepository(deps.DB)
	notificationRepo := repository.NewNotificationRepository(deps.DB)

	chatHub := ws.NewChatHub()

	// Services
	authSvc := service.NewAuthService(cfg, memberRepo, deps.Mailer)
	notifSvc := service.NewNotificationService(cfg.Stream, deps.Registry, deps.EventCache, notificationRepo, memberRepo, deps.Dispatcher)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	memberHandler := handler.NewMemberHandler(memberRepo, deps.Cloud)
	petHandler := handler.NewPetHandler(petRepo, deps.Cloud)
	articleHandler := handler.NewArticleHandler(cfg, articleRepo, memberRepo, notifSvc, deps.Cloud)
	chatHandler := handler.NewChatHandler(chatRepo, memberRepo, notifSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc, notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
			authGroup.GET("/check-email", memberHandler.CheckEmail)
			authGroup.GET("/check-nickname", memberHandler.CheckNickname)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", memberHandler.GetProfile)
			me.PATCH("/nickname", memberHandler.UpdateNickname)
			me.PATCH("/address", memberHandler.UpdateAddress)
			me.PATCH("/birth-gender", memberHandler.UpdateBirthGender)
			me.POST("/profile-image", memberHandler.UpdateProfileImage)
			me.GET("/pets", petHandler.ListMine)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		pets := api.Group("/pets")
		pets.Use(authMw)
		{
			pets.POST("", petHandler.Register)
			pets.GET("/:id", petHandler.Get)
			pets.PUT("/:id", petHandler.Update)
			pets.DELETE("/:id", petHandler.Delete)
			pets.POST("/:id/images", petHandler.UploadImage)
		}

		articles := api.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)
			articles.POST("", authMw, articleHandler.Create)
			articles.PUT("/:id", authMw, articleHandler.Update)
			articles.DELETE("/:id", authMw, articleHandler.Delete)
			articles.POST("/:id/like", authMw, articleHandler.Like)
			articles.DELETE("/:id/like", authMw, articleHandler.Unlike)
		}

		api.GET("/chat", authMw, chatHandler.GetRoom)
		api.GET("/chat/:room_id/messages", authMw, chatHandler.GetMessages)

		// Long-lived notification stream (SSE)
		api.GET("/notifications/connect", authMw, notificationHandler.Connect)
	}

	r.GET("/ws/chat", handler.UpgradeChatWS(&cfg.JWT, chatHub, chatHandler))

	return r
}
