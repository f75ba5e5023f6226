package repositories

import (
	"pomodoro/internal/repositories/pomodoro"
	"pomodoro/internal/repositories/task"
	"pomodoro/internal/repositories/timeblock"
	"pomodoro/internal/repositories/user"

	"go.uber.org/fx"
)

var Module = fx.Options(
	user.Module,
	task.Module,
	pomodoro.Module,
	timeblock.Module,
)
