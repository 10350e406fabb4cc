package main

import (
	"log"

	"studytracker/internal/config"
	"studytracker/internal/db"
	"studytracker/internal/handler"
	"studytracker/internal/repository"
	"studytracker/internal/router"
	"studytracker/internal/scheduler"
	"studytracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	logger := log.Default()
	userRepo := repository.NewUserRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	summaryRepo := repository.NewSummaryRepository(database)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	taskService := service.NewTaskService(taskRepo, userRepo, cfg.Location, logger)
	summaryService := service.NewSummaryService(summaryRepo, taskRepo, cfg.Location)
	userService := service.NewUserService(userRepo)
	reconcileService := service.NewReconcileService(userRepo, taskRepo, logger)

	if cfg.ReconcileInterval > 0 {
		reconciler := scheduler.New(reconcileService, cfg.ReconcileInterval, cfg.ReconcileApply, logger)
		if err := reconciler.Start(); err != nil {
			log.Fatalf("start reconciler: %v", err)
		}
		defer reconciler.Stop()
	}

	engine := router.New(authService, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Task:    handler.NewTaskHandler(taskService),
		Summary: handler.NewSummaryHandler(summaryService),
		User:    handler.NewUserHandler(userService),
	}, cfg.CORSOrigins)

	log.Printf("study tracker listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
