package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytracker/internal/handler"
	"studytracker/internal/middleware"
	"studytracker/internal/service"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Task    *handler.TaskHandler
	Summary *handler.SummaryHandler
	User    *handler.UserHandler
}

func New(authService *service.AuthService, handlers Handlers, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(authService))

	protected.GET("/users/me", handlers.User.Me)
	protected.GET("/users/:id", handlers.User.Get)
	protected.GET("/leaderboard", handlers.User.Leaderboard)

	tasks := protected.Group("/tasks")
	tasks.POST("", handlers.Task.Create)
	tasks.POST("/batch", handlers.Task.CreateBatch)
	tasks.GET("", handlers.Task.List)
	tasks.GET("/active", handlers.Task.Active)
	tasks.GET("/:id", handlers.Task.Get)
	tasks.POST("/:id/:action", handlers.Task.Transition)

	protected.GET("/feed", handlers.Task.Feed)

	protected.POST("/summaries", handlers.Summary.EndDay)
	protected.GET("/summaries", handlers.Summary.List)

	return engine
}
