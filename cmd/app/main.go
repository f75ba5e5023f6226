package main

import (
	"pomodoro/internal/api/handlers"
	"pomodoro/internal/api/server"
	"pomodoro/internal/cache"
	"pomodoro/internal/db"
	"pomodoro/internal/metrics"
	"pomodoro/internal/repositories"
	"pomodoro/internal/security"
	"pomodoro/internal/services"
	"pomodoro/pkg/config"
	"pomodoro/pkg/logger"

	"go.uber.org/fx"
)

func modules() fx.Option {
	return fx.Options(
		config.Module,
		logger.Module,
		db.Module,
		cache.Module,
		metrics.Module,
		security.Module,
		repositories.Module,
		services.Module,
		handlers.Module,
		server.Module,
	)
}

func main() {
	fx.New(modules()).Run()
}
