package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetrack-api/internal/config"
	"github.com/yukikurage/timetrack-api/internal/constants"
	"github.com/yukikurage/timetrack-api/internal/handlers"
	"github.com/yukikurage/timetrack-api/internal/mail"
	"github.com/yukikurage/timetrack-api/internal/middleware"
	"github.com/yukikurage/timetrack-api/internal/repository"
	"github.com/yukikurage/timetrack-api/internal/security"
	"github.com/yukikurage/timetrack-api/internal/services"
	"gorm.io/gorm"
)

// Deps holds what the HTTP layer needs from the outside world.
type Deps struct {
	DB           *gorm.DB
	Config       *config.Config
	SessionStore sessions.Store
	Mailer       mail.Sender
	Suggester    services.TaskSuggester
}

// New wires repositories, services and handlers into a gin engine.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config
	if deps.Mailer == nil {
		deps.Mailer = mail.LogSender{}
	}

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	timesheetRepo := repository.NewTimesheetRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)

	// Services
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	notifier := services.NewNotificationService(deps.Mailer, cfg.MailFrom)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo, userRepo, deps.Suggester)
	timesheetService := services.NewTimesheetService(timesheetRepo, projectRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokens)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	if corsMiddleware := newCORS(cfg.CORSOrigins); corsMiddleware != nil {
		r.Use(corsMiddleware)
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Timetrack API is running",
		})
	})

	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	requireAuth := middleware.RequireAuth(tokens)

	// API routes
	api := r.Group("/api")
	{
		api.POST("/register", middleware.RateLimit(limiter), authHandler.Register)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.POST("/jwt/create", middleware.RateLimit(limiter), authHandler.CreateToken)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.PATCH("/:id", projectHandler.PatchProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.POST("/:id/status", projectHandler.ChangeStatus)
			projects.POST("/:id/suggest-tasks", projectHandler.SuggestTasks)
		}

		timesheets := api.Group("/timesheets")
		timesheets.Use(requireAuth)
		{
			timesheets.GET("", timesheetHandler.ListTimesheets)
			timesheets.POST("", timesheetHandler.CreateTimesheet)
			timesheets.GET("/:id", timesheetHandler.GetTimesheet)
			timesheets.PUT("/:id", timesheetHandler.UpdateTimesheet)
			timesheets.PATCH("/:id", timesheetHandler.PatchTimesheet)
			timesheets.DELETE("/:id", timesheetHandler.DeleteTimesheet)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.PatchTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	return r
}

// newCORS returns nil when no origin is allowed.
func newCORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		// credentials cannot be combined with a wildcard origin
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = origins
	}

	return cors.New(corsConfig)
}
