package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"listora_publisher_v1/internal/controller"
	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/internal/repository"
	"listora_publisher_v1/internal/router"
	"listora_publisher_v1/internal/service"
	"listora_publisher_v1/internal/task"
	"listora_publisher_v1/pkg/database"
)

func main() {
	// 0. 加载环境变量（文件不存在不报错，容器环境直接注入）
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用进程环境变量")
	}

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Publish, deps.Controllers.History, deps.Controllers.Connection)

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	TokenTask   *task.TokenTask
}

// Repositories 仓库集合
type Repositories struct {
	Content    repository.ContentRepository
	Connection repository.ConnectionRepository
	Listing    repository.ListingRepository
	Product    repository.PublishedProductRepository
	Template   repository.TemplateFileRepository
}

// Services 服务集合
type Services struct {
	Normalizer *service.NormalizerService
	Attribute  *service.AttributeService
	Builder    *service.BuilderService
	Token      *service.TokenService
	Category   *service.CategoryService
	Event      *service.EventService
	Publish    *service.PublishService
	Template   *service.AmazonTemplateService
}

// Controllers 控制器集合
type Controllers struct {
	Publish    *controller.PublishController
	History    *controller.HistoryController
	Connection *controller.ConnectionController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=listora password=listora dbname=listora port=5432 sslmode=disable")
	return database.InitDB(dsn,
		// Content
		&model.ProductContent{},
		// Connection
		&model.MarketplaceConnection{},
		// Publish
		&model.EbayListing{}, &model.PublishedProduct{}, &model.AmazonTemplateFile{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Content:    repository.NewContentRepository(db),
		Connection: repository.NewConnectionRepository(db),
		Listing:    repository.NewListingRepository(db),
		Product:    repository.NewPublishedProductRepository(db),
		Template:   repository.NewTemplateFileRepository(db),
	}

	// -------- 基础服务 --------
	normalizer := service.NewNormalizerService()
	attrs := service.NewAttributeService()
	builder := service.NewBuilderService(attrs)

	tokenSvc := service.NewTokenService(repos.Connection, service.AppCredentials{
		ClientID:     getEnv("EBAY_CLIENT_ID", ""),
		ClientSecret: getEnv("EBAY_CLIENT_SECRET", ""),
	})
	categorySvc := service.NewCategoryService(tokenSvc)

	eventSvc := service.NewEventService(kafkaBrokers())
	storage := initStorage()

	// -------- 业务服务 --------
	publishSvc := service.NewPublishService(
		repos.Content, repos.Connection, repos.Listing, repos.Product,
		normalizer, builder, categorySvc, tokenSvc, eventSvc,
		service.TradingAppCredentials{
			DevName:  getEnv("EBAY_DEV_NAME", ""),
			AppName:  getEnv("EBAY_CLIENT_ID", ""),
			CertName: getEnv("EBAY_CLIENT_SECRET", ""),
		},
	)
	templateSvc := service.NewAmazonTemplateService(
		repos.Content, repos.Template, normalizer, attrs, storage, eventSvc,
	)

	services := &Services{
		Normalizer: normalizer,
		Attribute:  attrs,
		Builder:    builder,
		Token:      tokenSvc,
		Category:   categorySvc,
		Event:      eventSvc,
		Publish:    publishSvc,
		Template:   templateSvc,
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		Publish:    controller.NewPublishController(publishSvc, templateSvc),
		History:    controller.NewHistoryController(repos.Listing, repos.Product, repos.Template),
		Connection: controller.NewConnectionController(repos.Connection),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorage 初始化存储，失败降级为 nil（模板文件只回传内容不落盘）
func initStorage() service.StorageProvider {
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "local"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "listora-templates"),
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败: %v", err)
		return nil
	}
	return storage
}

func kafkaBrokers() []string {
	raw := getEnv("KAFKA_BROKERS", "")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	tokenTask := task.NewTokenTask(deps.Repos.Connection, deps.Services.Token)
	tokenTask.Start()
	deps.TokenTask = tokenTask

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	if deps.TokenTask != nil {
		deps.TokenTask.Stop()
	}
	if err := deps.Services.Event.Close(); err != nil {
		log.Printf("事件通道关闭出错: %v", err)
	}

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
