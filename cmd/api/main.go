package main

import (
	"fmt"
	"net/http"
	"time"

	"remark-go/internal/api/handler"
	"remark-go/internal/api/middleware"
	"remark-go/internal/api/router"
	"remark-go/internal/config"
	"remark-go/internal/identity"
	"remark-go/internal/infra/database"
	infraKafka "remark-go/internal/infra/kafka"
	infraRedis "remark-go/internal/infra/redis"
	"remark-go/internal/model"
	"remark-go/internal/repository"
	"remark-go/internal/service"
	"remark-go/pkg/logger"

	_ "remark-go/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Remark-Go API
// @version 1.0
// @description 媒体评论与社区管理 API 服务

// @contact.name API Support
// @contact.email support@remark.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// 加载配置文件
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	// 自动迁移数据库表
	if err := database.AutoMigrate(
		&model.User{},
		&model.Comment{},
		&model.CommentEditRecord{},
		&model.CommentTag{},
		&model.Vote{},
		&model.RateLimitWindow{},
		&model.Warning{},
		&model.Ban{},
		&model.ShadowBan{},
		&model.RoleChange{},
		&model.Report{},
	); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 初始化Redis（失败则排行榜与列表缓存降级）
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis init failed, leaderboard and list cache disabled", zap.Error(err))
	} else {
		defer infraRedis.Close()
	}

	// 初始化Kafka生产者（失败则审计事件丢弃）
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Warn("Kafka producer init failed, audit events will be dropped", zap.Error(err))
	} else {
		defer infraKafka.CloseProducer()
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()

	// 使用自定义中间件
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)
	moderationRepo := repository.NewModerationRepository(db)

	cacheService := service.NewCacheService(infraRedis.Get())
	auditService := service.NewAuditService(cfg.Kafka.Topics["audit"])
	rateLimitService := service.NewRateLimitService(rateLimitRepo, &cfg.RateLimit)
	reputationService := service.NewReputationService(userRepo, cacheService)
	moderationService := service.NewModerationService(userRepo, moderationRepo, commentRepo, &cfg.Moderation, rateLimitService, auditService)
	commentService := service.NewCommentService(commentRepo, userRepo, moderationService, reputationService, rateLimitService, cacheService, auditService)
	voteService := service.NewVoteService(voteRepo, commentRepo, userRepo, moderationService, reputationService, rateLimitService, cacheService, auditService)

	verifier := identity.NewJWTVerifier(&cfg.Identity)
	identityService := service.NewIdentityService(userRepo, verifier, &cfg.Moderation)

	commentHandler := handler.NewCommentHandler(commentService)
	voteHandler := handler.NewVoteHandler(voteService)
	moderationHandler := handler.NewModerationHandler(moderationService)
	userHandler := handler.NewUserHandler(userRepo, reputationService, rateLimitService)

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)
	r.GET("/", rootHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, identityService, commentHandler, voteHandler, moderationHandler, userHandler)

	// 启动服务器
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.Strings("kafka", cfg.Kafka.Brokers),
	)

	// 启动HTTP服务器
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	logger.Debug("Health check requested", zap.String("ip", c.ClientIP()))

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"mode":      cfg.App.Mode,
	})
}

// rootHandler 根路径处理器
func rootHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"mode":    cfg.App.Mode,
		"docs":    fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.App.Port),
	})
}
