package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/rightsvoice/backend/internal/config"
	"github.com/rightsvoice/backend/internal/middleware"
	"github.com/rightsvoice/backend/pkg/storage"

	assistantHttp "github.com/rightsvoice/backend/internal/modules/assistant/delivery/http"
	assistantProvider "github.com/rightsvoice/backend/internal/modules/assistant/provider"
	assistantService "github.com/rightsvoice/backend/internal/modules/assistant/service"

	commentHttp "github.com/rightsvoice/backend/internal/modules/comment/delivery/http"
	commentRepo "github.com/rightsvoice/backend/internal/modules/comment/repository"
	commentService "github.com/rightsvoice/backend/internal/modules/comment/service"

	complaintHttp "github.com/rightsvoice/backend/internal/modules/complaint/delivery/http"
	complaintRepo "github.com/rightsvoice/backend/internal/modules/complaint/repository"
	complaintService "github.com/rightsvoice/backend/internal/modules/complaint/service"

	educationHttp "github.com/rightsvoice/backend/internal/modules/education/delivery/http"
	educationRepo "github.com/rightsvoice/backend/internal/modules/education/repository"
	educationService "github.com/rightsvoice/backend/internal/modules/education/service"

	notifHttp "github.com/rightsvoice/backend/internal/modules/notification/delivery/http"
	notifRepo "github.com/rightsvoice/backend/internal/modules/notification/repository"
	notifService "github.com/rightsvoice/backend/internal/modules/notification/service"

	pointsHttp "github.com/rightsvoice/backend/internal/modules/points/delivery/http"
	pointsRepo "github.com/rightsvoice/backend/internal/modules/points/repository"
	pointsService "github.com/rightsvoice/backend/internal/modules/points/service"

	postHttp "github.com/rightsvoice/backend/internal/modules/post/delivery/http"
	postRepo "github.com/rightsvoice/backend/internal/modules/post/repository"
	postService "github.com/rightsvoice/backend/internal/modules/post/service"

	reactionHttp "github.com/rightsvoice/backend/internal/modules/reaction/delivery/http"
	reactionRepo "github.com/rightsvoice/backend/internal/modules/reaction/repository"
	reactionService "github.com/rightsvoice/backend/internal/modules/reaction/service"

	searchHttp "github.com/rightsvoice/backend/internal/modules/search/delivery/http"
	searchService "github.com/rightsvoice/backend/internal/modules/search/service"

	userHttp "github.com/rightsvoice/backend/internal/modules/user/delivery/http"
	userRepo "github.com/rightsvoice/backend/internal/modules/user/repository"
	userService "github.com/rightsvoice/backend/internal/modules/user/service"

	violationmapHttp "github.com/rightsvoice/backend/internal/modules/violationmap/delivery/http"
	violationmapService "github.com/rightsvoice/backend/internal/modules/violationmap/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepository := userRepo.NewUserRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage disabled: %v", err)
		imageStorage = nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := searchService.NewSearchService(meiliClient)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	// Points Ledger
	pointsRepository := pointsRepo.NewPointsRepository(db)
	pointsSvc := pointsService.NewPointsService(pointsRepository)
	pointsHandler := pointsHttp.NewPointsHandler(pointsSvc)

	authSvc := userService.NewAuthService(userRepository, pointsSvc, cfg.JWTSecret)
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileSvc := userService.NewProfileService(userRepository, imageStorage)
	profileHandler := userHttp.NewProfileHandler(profileSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient)

	postRepository := postRepo.NewPostRepository(db)
	commentRepository := commentRepo.NewCommentRepository(db)

	reactionRepository := reactionRepo.NewReactionRepository(db)
	reactionSvc := reactionService.NewReactionService(reactionRepository, redisClient, notificationSvc, postRepository, commentRepository)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)

	postSvc := postService.NewPostService(postRepository, commentRepository, userRepository, reactionSvc, searchSvc, imageStorage, redisClient)
	postHandler := postHttp.NewPostHandler(postSvc)

	commentSvc := commentService.NewCommentService(db, commentRepository, postRepository, userRepository, pointsSvc, reactionSvc, notificationSvc, redisClient)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	// Complaint + Violations Map
	complaintRepository := complaintRepo.NewComplaintRepository(db)
	complaintSvc := complaintService.NewComplaintService(complaintRepository, userRepository, pointsSvc, notificationSvc, imageStorage)
	complaintHandler := complaintHttp.NewComplaintHandler(complaintSvc)

	violationMapSvc := violationmapService.NewViolationMapService(complaintRepository, redisClient)
	violationMapHandler := violationmapHttp.NewViolationMapHandler(violationMapSvc)

	// Education
	articleRepository := educationRepo.NewArticleRepository(db)
	educationSvc := educationService.NewEducationService(articleRepository, searchSvc)
	educationHandler := educationHttp.NewEducationHandler(educationSvc)

	// Rights Assistant, optional if no API key is configured
	var llmProvider assistantProvider.LLMProvider
	if cfg.GeminiAPIKey != "" {
		provider, err := assistantProvider.NewGeminiProvider(context.Background(), cfg.AssistantModel)
		if err != nil {
			log.Printf("assistant disabled: %v", err)
		} else {
			llmProvider = provider
		}
	}
	assistantSvc := assistantService.NewAssistantService(llmProvider, redisClient)
	assistantHandler := assistantHttp.NewAssistantHandler(assistantSvc)

	router := gin.New()
	setupCORS(router, cfg)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/education", educationHandler.GetArticles)
	api.GET("/education/:slug", educationHandler.GetArticleBySlug)
	api.GET("/map", violationMapHandler.GetMap)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/complaints", complaintHandler.GetAllComplaints)
			adminGroup.PUT("/complaints/:id/status", complaintHandler.UpdateComplaintStatus)
			adminGroup.POST("/articles", educationHandler.CreateArticle)
			adminGroup.PUT("/articles/:id", educationHandler.UpdateArticle)
			adminGroup.DELETE("/articles/:id", educationHandler.DeleteArticle)
		}

		// Feed routes
		protected.POST("/posts", postHandler.CreatePost)
		protected.GET("/posts", postHandler.GetPosts)
		protected.GET("/posts/user/:username", postHandler.GetPostsByUsername)
		protected.GET("/posts/:post_id", postHandler.GetPostByID)
		protected.PUT("/posts/:post_id", postHandler.UpdatePost)
		protected.DELETE("/posts/:post_id", postHandler.DeletePost)

		// Comment routes
		protected.POST("/posts/:post_id/comments", commentHandler.CreateComment)
		protected.GET("/posts/:post_id/comments", commentHandler.GetCommentsByPostID)
		protected.PUT("/comments/:comment_id", commentHandler.UpdateComment)
		protected.DELETE("/comments/:comment_id", commentHandler.DeleteComment)

		// Reaction routes
		protected.POST("/reactions", reactionHandler.Toggle)
		protected.GET("/reactions/:refType/:refID", reactionHandler.GetReactions)

		// Points routes
		protected.GET("/points/balance", pointsHandler.GetBalance)
		protected.GET("/points/history", pointsHandler.GetHistory)

		// Complaint routes
		protected.POST("/complaints", complaintHandler.CreateComplaint)
		protected.GET("/complaints/me", complaintHandler.GetMyComplaints)
		protected.GET("/complaints/:id", complaintHandler.GetComplaintByID)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.GET("/profile/:username", profileHandler.GetProfileByUsername)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.PUT("/profile/avatar", profileHandler.UpdateAvatar)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Other protected routes
		protected.GET("/search", searchHandler.Search)
		protected.POST("/assistant/ask", assistantHandler.Ask)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	var origins []string
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
