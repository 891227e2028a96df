package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/edukita/edukita-backend/internal/db"
	"github.com/edukita/edukita-backend/internal/handlers"
	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/middleware"
	"github.com/edukita/edukita-backend/internal/repos"
	"github.com/edukita/edukita-backend/internal/server"
	"github.com/edukita/edukita-backend/internal/services"
	"github.com/edukita/edukita-backend/internal/storage"
	"github.com/edukita/edukita-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 604800, log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "localhost:6379", log)
	deleteGuardTTL := utils.GetEnvAsInt("DELETE_GUARD_TTL", 300, log)
	cascadeFailureThreshold := utils.GetEnvAsInt("CASCADE_FAILURE_THRESHOLD", 0, log)
	allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	articleRepo := repos.NewArticleRepo(thePG, log)
	educationRepo := repos.NewEducationRepo(thePG, log)
	workshopRepo := repos.NewWorkshopRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := storage.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	deleteGuard, err := services.NewDeleteGuard(log, redisAddr, time.Duration(deleteGuardTTL)*time.Second)
	if err != nil {
		// Cascading deletes still work without the guard, they just lose
		// cross-instance serialization.
		log.Warn("Could not init DeleteGuard, continuing without it", "error", err)
		deleteGuard = nil
	}

	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	ownershipService := services.NewOwnershipService(thePG, log, userRepo, articleRepo, educationRepo, workshopRepo)
	userService := services.NewUserService(thePG, log, userRepo, articleRepo, educationRepo, workshopRepo, ownershipService)
	articleService := services.NewArticleService(thePG, log, articleRepo, ownershipService, bucketService)
	educationService := services.NewEducationService(thePG, log, educationRepo, ownershipService, bucketService)
	workshopService := services.NewWorkshopService(thePG, log, workshopRepo, userRepo, ownershipService, bucketService)
	cascadeService := services.NewCascadeService(
		thePG,
		log,
		userRepo,
		articleRepo,
		educationRepo,
		workshopRepo,
		bucketService,
		deleteGuard,
		cascadeFailureThreshold,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, cascadeService, ownershipService)
	articleHandler := handlers.NewArticleHandler(articleService)
	educationHandler := handlers.NewEducationHandler(educationService)
	workshopHandler := handlers.NewWorkshopHandler(workshopService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowOrigins:     allowOrigins,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		UserHandler:      userHandler,
		ArticleHandler:   articleHandler,
		EducationHandler: educationHandler,
		WorkshopHandler:  workshopHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
