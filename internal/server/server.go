package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"kindbite/internal/ai"
	"kindbite/internal/ai/component"
	"kindbite/internal/config"
	"kindbite/internal/handler"
	"kindbite/internal/model/auth"
	authHandler "kindbite/internal/handler/auth"
	chatHandler "kindbite/internal/handler/chat"
	foodHandler "kindbite/internal/handler/food"
	"kindbite/internal/pkg/cache"
	"kindbite/internal/pkg/jwt"
	"kindbite/internal/pkg/mongodb"
	"kindbite/internal/pkg/storagefactory"
	authRepo "kindbite/internal/repository/auth"
	chatRepo "kindbite/internal/repository/chat"
	foodRepo "kindbite/internal/repository/food"
	"kindbite/internal/server/middleware"
	"kindbite/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
// MongoDB 为必选依赖；Redis、远程AI模型、对象存储均可缺省降级
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 初始化 MongoDB
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	// 创建索引
	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() error {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.mongo.Client())
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	db := s.mongo.Database()

	// 仓库
	userRepo := authRepo.NewUserRepo(db)
	refreshTokenRepo := authRepo.NewRefreshTokenRepo(db)
	sessionRepo := chatRepo.NewSessionRepo(db)
	messageRepo := chatRepo.NewMessageRepo(db)
	knowledgeRepo := chatRepo.NewKnowledgeRepo(db)
	feedbackRepo := chatRepo.NewFeedbackRepo(db)
	listingRepo := foodRepo.NewListingRepo(db)
	reservationRepo := foodRepo.NewReservationRepo(db)
	ratingRepo := foodRepo.NewRatingRepo(db)
	imageRepo := foodRepo.NewImageRepo(db)

	// JWT 参数
	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}

	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}

	refreshTokenExpiry := s.cfg.Auth.RefreshTokenExpiry
	if refreshTokenExpiry == 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}

	// 远程AI模型 (可选，没有API key时聊天助手走规则回退路径)
	resolver := s.buildResolver(knowledgeRepo)

	// 对象存储
	store, err := storagefactory.NewStorage(&s.cfg.Storage)
	if err != nil {
		return err
	}
	log.Info().Str("type", store.GetStorageType()).Msg("initialized storage")

	// 会话详情缓存（Redis未配置时不启用）
	var sessionCache service.SessionCache
	if s.redis != nil {
		sessionCache = s.redis
	}

	// 服务
	authSvc := service.NewAuthService(userRepo, refreshTokenRepo, jwtSecret, accessTokenExpiry, refreshTokenExpiry)
	chatSvc := service.NewChatService(sessionRepo, messageRepo, feedbackRepo, resolver, sessionCache)
	knowledgeSvc := service.NewKnowledgeService(knowledgeRepo)
	reservationSvc := service.NewReservationService(listingRepo, reservationRepo, userRepo, s.cfg.Rewards)
	foodSvc := service.NewFoodService(listingRepo, reservationRepo, ratingRepo, imageRepo, store)

	// 处理器
	authHdl := authHandler.NewHandler(authSvc)
	chatHdl := chatHandler.NewHandler(chatSvc, knowledgeSvc)
	foodHdl := foodHandler.NewHandler(foodSvc, reservationSvc, authSvc)

	jwtUtil := jwt.NewJWT(jwtSecret, accessTokenExpiry)
	authed := middleware.Auth(jwtUtil)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// 认证接口（公开）
		v1.POST("/auth/register", authHdl.Register)
		v1.POST("/auth/login", authHdl.Login)
		v1.POST("/auth/refresh", authHdl.Refresh)
		v1.POST("/auth/logout", authHdl.Logout)
		v1.GET("/auth/me", authed, authHdl.GetMe)

		// 聊天接口（需要认证）
		chat := v1.Group("/chat", authed)
		{
			chat.POST("/send", chatHdl.Send)
			chat.GET("/sessions", chatHdl.ListSessions)
			chat.POST("/sessions", chatHdl.CreateSession)
			chat.GET("/sessions/:id", chatHdl.GetSession)
			chat.DELETE("/sessions/:id", chatHdl.DeleteSession)
			chat.POST("/feedback", chatHdl.SubmitFeedback)
			chat.GET("/stats", chatHdl.GetStats)
		}

		// 食物接口
		food := v1.Group("/food")
		{
			// 公开浏览
			food.GET("/listings", foodHdl.ListAvailable)
			food.GET("/listings/:id", foodHdl.GetListing)
			food.GET("/listings/:id/ratings", foodHdl.ListRatings)
			food.GET("/listings/:id/images", foodHdl.ListImages)
			food.GET("/images/:image_id/url", foodHdl.GetImageURL)
			food.GET("/stats", foodHdl.GetPlatformStats)

			// 需要认证
			food.POST("/listings", authed, foodHdl.CreateListing)
			food.GET("/my/listings", authed, foodHdl.ListMine)
			food.PUT("/listings/:id", authed, foodHdl.UpdateListing)
			food.DELETE("/listings/:id", authed, foodHdl.DeleteListing)
			food.POST("/listings/:id/ratings", authed, foodHdl.RateListing)
			food.POST("/listings/:id/images", authed, foodHdl.UploadImage)
			food.DELETE("/images/:image_id", authed, foodHdl.DeleteImage)

			food.POST("/reservations", authed, foodHdl.Reserve)
			food.GET("/reservations", authed, foodHdl.ListMyReservations)
			food.GET("/reservations/:id", authed, foodHdl.GetReservation)
			food.POST("/reservations/:id/cancel", authed, foodHdl.CancelReservation)
			food.POST("/reservations/:id/confirm", authed, foodHdl.ConfirmReservation)
			food.POST("/reservations/:id/pickup", authed, foodHdl.PickupReservation)
			food.POST("/reservations/:id/noshow", authed, foodHdl.NoShowReservation)
		}

		// 知识库管理（仅管理员）
		admin := v1.Group("/admin", authed, middleware.RequireRole(auth.RoleAdmin.String()))
		{
			admin.GET("/knowledge", chatHdl.ListKnowledge)
			admin.POST("/knowledge", chatHdl.CreateKnowledge)
			admin.GET("/knowledge/:id", chatHdl.GetKnowledge)
			admin.PUT("/knowledge/:id", chatHdl.UpdateKnowledge)
			admin.DELETE("/knowledge/:id", chatHdl.DeleteKnowledge)
		}
	}

	return nil
}

// buildResolver 构建聊天回复解析器
// API key缺省或模型初始化失败时降级为纯规则回退；Redis可用时知识库检索走缓存
func (s *Server) buildResolver(knowledgeRepo *chatRepo.KnowledgeRepo) *ai.Resolver {
	var searcher ai.KnowledgeSearcher = knowledgeRepo
	if s.redis != nil {
		searcher = service.NewCachedKnowledgeSearcher(knowledgeRepo, s.redis)
	}

	if s.cfg.AI.APIKey == "" {
		log.Warn().Msg("AI API key not configured, chat assistant runs in rule-based mode")
		return ai.NewResolver(nil, searcher)
	}

	chatModel, err := component.NewChatModel(context.Background(), &s.cfg.AI)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize chat model, falling back to rule-based mode")
		return ai.NewResolver(nil, searcher)
	}

	log.Info().Str("provider", s.cfg.AI.Provider).Str("model", s.cfg.AI.Model).Msg("initialized chat model")
	return ai.NewResolver(chatModel, searcher)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
