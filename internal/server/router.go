package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/edukita/edukita-backend/internal/handlers"
	"github.com/edukita/edukita-backend/internal/middleware"
)

type RouterConfig struct {
	AllowOrigins     []string
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	UserHandler      *handlers.UserHandler
	ArticleHandler   *handlers.ArticleHandler
	EducationHandler *handlers.EducationHandler
	WorkshopHandler  *handlers.WorkshopHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.Healthcheck)

	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)

		api.GET("/articles", cfg.ArticleHandler.GetLatest)
		api.GET("/articles/search", cfg.ArticleHandler.Search)
		api.GET("/articles/:id", cfg.ArticleHandler.GetByID)

		api.GET("/educations", cfg.EducationHandler.GetLatest)
		api.GET("/educations/search", cfg.EducationHandler.Search)
		api.GET("/educations/:id", cfg.EducationHandler.GetByID)

		api.GET("/workshops", cfg.WorkshopHandler.GetAll)
		api.GET("/workshops/search", cfg.WorkshopHandler.Search)
		api.GET("/workshops/:id", cfg.WorkshopHandler.GetByID)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		// User
		protected.GET("/users/profile", cfg.UserHandler.GetProfile)
		protected.GET("/users", cfg.UserHandler.GetAll)
		protected.GET("/users/search", cfg.UserHandler.Search)
		protected.GET("/users/username/:username", cfg.UserHandler.GetByUsername)
		protected.GET("/users/role/:role", cfg.UserHandler.GetByRole)
		protected.GET("/users/:id", cfg.UserHandler.GetByID)
		protected.GET("/users/:id/ownership", cfg.UserHandler.VerifyOwnership)
		protected.PATCH("/users", cfg.UserHandler.UpdateUsername)
		protected.PATCH("/users/:id/role", cfg.UserHandler.SetRole)
		protected.PATCH("/users/:id/role/reset", cfg.UserHandler.ResetRole)
		protected.DELETE("/users/:id", cfg.UserHandler.Delete)

		// Article
		protected.POST("/articles", cfg.ArticleHandler.Create)
		protected.GET("/articles/own", cfg.ArticleHandler.GetOwn)
		protected.PATCH("/articles/:id", cfg.ArticleHandler.Update)
		protected.DELETE("/articles/:id", cfg.ArticleHandler.Delete)

		// Education
		protected.POST("/educations", cfg.EducationHandler.Create)
		protected.GET("/educations/own", cfg.EducationHandler.GetOwn)
		protected.PATCH("/educations/:id", cfg.EducationHandler.Update)
		protected.DELETE("/educations/:id", cfg.EducationHandler.Delete)

		// Workshop
		protected.POST("/workshops", cfg.WorkshopHandler.Create)
		protected.GET("/workshops/own", cfg.WorkshopHandler.GetOwn)
		protected.PATCH("/workshops/:id", cfg.WorkshopHandler.Update)
		protected.DELETE("/workshops/:id", cfg.WorkshopHandler.Delete)
		protected.POST("/workshops/:id/join", cfg.WorkshopHandler.Join)
		protected.GET("/workshops/:id/participants", cfg.WorkshopHandler.Participants)
	}

	return router
}
