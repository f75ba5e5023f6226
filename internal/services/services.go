package services

import (
	"pomodoro/internal/services/auth"
	"pomodoro/internal/services/hub"
	"pomodoro/internal/services/pomodoro"
	"pomodoro/internal/services/task"
	"pomodoro/internal/services/timeblock"
	"pomodoro/internal/services/user"

	"go.uber.org/fx"
)

var Module = fx.Options(
	hub.Module,
	auth.Module,
	user.Module,
	task.Module,
	pomodoro.Module,
	timeblock.Module,
)
