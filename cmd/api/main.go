package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"atelier-go/internal/api/handler"
	"atelier-go/internal/api/middleware"
	"atelier-go/internal/api/router"
	"atelier-go/internal/config"
	"atelier-go/internal/infra/database"
	infraES "atelier-go/internal/infra/elasticsearch"
	infraKafka "atelier-go/internal/infra/kafka"
	infraMinio "atelier-go/internal/infra/minio"
	infraRedis "atelier-go/internal/infra/redis"
	"atelier-go/internal/model"
	"atelier-go/internal/realtime"
	"atelier-go/internal/repository"
	"atelier-go/internal/service"
	"atelier-go/pkg/logger"

	_ "atelier-go/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Atelier API
// @version 1.0
// @description 创作协作平台 API 服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@atelier.dev

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
		&model.Asset{},
		&model.AssetLike{},
		&model.Comment{},
		&model.CommentLike{},
		&model.Drop{},
		&model.DropDelivery{},
		&model.Subscriber{},
	); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 初始化 Redis（实时通道依赖）
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to init redis", zap.Error(err))
	}
	defer infraRedis.Close()

	// 初始化 MinIO
	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	// 初始化 Kafka 生产者
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	// 初始化 Elasticsearch（可选，失败则搜索降级到 DB）
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
	}

	// 设置 Gin 模式
	gin.SetMode(cfg.App.Mode)

	// 创建 Gin 路由器（不使用默认中间件）
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	// 实时通道：跨实例用 Redis pub/sub 分发点赞变更
	channel := realtime.NewRedisChannel(
		infraRedis.Get(),
		cfg.Realtime.EventBuffer,
		cfg.Realtime.ReconnectMin(),
		cfg.Realtime.ReconnectMax(),
	)

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	assetLikeRepo := repository.NewAssetLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	commentLikeRepo := repository.NewCommentLikeRepository(db)
	dropRepo := repository.NewDropRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	assetService := service.NewAssetService(assetRepo, userRepo, commentRepo, commentLikeRepo, assetLikeRepo)
	assetLikeService := service.NewAssetLikeService(assetLikeRepo, assetRepo, userRepo)
	commentService := service.NewCommentService(commentRepo, commentLikeRepo, assetRepo)
	commentLikeService := service.NewCommentLikeService(commentLikeRepo, commentRepo, channel)
	dropService := service.NewDropService(dropRepo, subscriberRepo)
	searchService := service.NewSearchService(assetRepo)

	// 启动投递结果消费者（后台 goroutine），推进快讯 sending -> sent
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if topic, ok := cfg.Kafka.Topics["drop_results"]; ok {
		go infraKafka.StartDeliveryResultConsumer(
			consumerCtx,
			cfg.Kafka.Brokers,
			topic,
			"atelier-drop-results",
			dropService.HandleDeliveryResult,
		)
	}

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, authService)
	assetHandler := handler.NewAssetHandler(assetService)
	assetLikeHandler := handler.NewAssetLikeHandler(assetLikeService)
	commentHandler := handler.NewCommentHandler(commentService, authService)
	commentLikeHandler := handler.NewCommentLikeHandler(commentLikeService)
	dropHandler := handler.NewDropHandler(dropService)
	searchHandler := handler.NewSearchHandler(searchService)
	realtimeHandler := handler.NewRealtimeHandler(commentLikeService, assetService, channel)

	// 管理员中间件（需要查数据库获取角色）
	adminMiddleware := middleware.AdminRequired(userHandler.RoleFetcher)

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)
	r.GET("/", rootHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r,
		authHandler,
		userHandler,
		assetHandler,
		assetLikeHandler,
		commentHandler,
		commentLikeHandler,
		dropHandler,
		searchHandler,
		realtimeHandler,
		adminMiddleware,
	)

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
		zap.String("minio", cfg.MinIO.Endpoint),
	)

	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// healthCheckHandler 健康检查接口，探活数据库与 Redis
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	deps := gin.H{"database": "ok", "redis": "ok"}
	status := "ok"
	code := http.StatusOK

	if err := database.Healthy(ctx); err != nil {
		deps["database"] = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := infraRedis.Healthy(ctx); err != nil {
		deps["redis"] = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"timestamp":    time.Now().Format(time.RFC3339),
		"service":      cfg.App.Name,
		"version":      cfg.App.Version,
		"mode":         cfg.App.Mode,
		"dependencies": deps,
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
