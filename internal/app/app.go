package app

import (
	"errors"
	"fmt"

	"skillbridge_backend/database"
	"skillbridge_backend/internal/auth"
	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/handlers"
	"skillbridge_backend/internal/logger"
	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/routes"
	"skillbridge_backend/internal/services"
	"skillbridge_backend/internal/storage"
	"skillbridge_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	// .env нужен только для локальной разработки, в проде его нет
	_ = godotenv.Load()

	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	auth.InitJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	logger.Info("Connecting to database...")
	// TranslateError превращает нарушения уникальных индексов
	// в gorm.ErrDuplicatedKey, на который смотрят репозитории
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("AutoMigrate failed", "error", err)
	}

	// Протухшие refresh-токены копятся между рестартами
	if err := repositories.NewRefreshTokenRepository(gormDB).DeleteExpired(); err != nil {
		logger.Warn("Failed to clean expired refresh tokens", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		// Без админа некому проверять платежи - не запускаемся
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg, storageInstance)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(serviceContainer)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB)

	// 4. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

// initializeServices собирает граф сервисов. Все сервисы получают
// *gorm.DB на каждый вызов (из хэндлера), поэтому здесь нет ни одного
// соединения с БД - только фабрика репозиториев и конфиг.
func initializeServices(cfg *config.Config, storageInstance storage.Storage) *services.ServiceContainer {
	repoFactory := services.NewRepositoryFactory()

	uploadService := services.NewUploadService(repoFactory, storageInstance, cfg)
	authService := services.NewAuthService(repoFactory)
	userService := services.NewUserService(repoFactory)
	courseService := services.NewCourseService(repoFactory, uploadService)
	purchaseService := services.NewPurchaseService(repoFactory, uploadService, cfg)
	jobService := services.NewJobService(repoFactory)
	statsService := services.NewStatsService(repoFactory)

	return &services.ServiceContainer{
		AuthService:     authService,
		UserService:     userService,
		CourseService:   courseService,
		PurchaseService: purchaseService,
		JobService:      jobService,
		UploadService:   uploadService,
		StatsService:    statsService,
		Storage:         storageInstance,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, services.AuthService),
		ProfileHandler:  handlers.NewProfileHandler(baseHandler, services.UserService, services.UploadService),
		CourseHandler:   handlers.NewCourseHandler(baseHandler, services.CourseService),
		PurchaseHandler: handlers.NewPurchaseHandler(baseHandler, services.PurchaseService),
		JobHandler:      handlers.NewJobHandler(baseHandler, services.JobService),
		AdminHandler:    handlers.NewAdminHandler(baseHandler, services.PurchaseService, services.UserService, services.StatsService),
		FileHandler:     handlers.NewFileHandler(baseHandler, services.Storage),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstAdmin создает первого администратора из конфига.
// Решения по платежам принимает только админ, поэтому без него
// система не функциональна.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.Admin.Email
	adminPassword := cfg.Admin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("admin.email or admin.password is not set in config. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		tx.Rollback()
		return nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		FullName:     "Platform Administrator",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}

	if err := tx.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("✅ Successfully created first admin user", "email", adminEmail)

	return tx.Commit().Error
}
