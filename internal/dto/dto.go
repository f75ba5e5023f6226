package dto

import (
	"time"

	"pomodoro/internal/repositories/pomodoro"
	"pomodoro/internal/repositories/task"
	"pomodoro/internal/repositories/timeblock"
	"pomodoro/internal/repositories/user"
)

type AuthRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,bcryptmax"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DeleteResponse struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// User

type UpdateUserRequest struct {
	Email         *string `json:"email" validate:"omitnil,email,max=255"`
	Password      *string `json:"password" validate:"omitnil,min=6,bcryptmax"`
	Name          *string `json:"name" validate:"omitnil,max=100"`
	WorkInterval  *int    `json:"workInterval" validate:"omitnil,min=1,max=120"`
	BreakInterval *int    `json:"breakInterval" validate:"omitnil,min=1,max=60"`
	IntervalCount *int    `json:"intervalCount" validate:"omitnil,min=1,max=20"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          *string   `json:"name"`
	WorkInterval  int       `json:"workInterval"`
	BreakInterval int       `json:"breakInterval"`
	IntervalCount int       `json:"intervalCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ProfileResponse struct {
	UserResponse
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	TodayTasks     int `json:"todayTasks"`
	WeekTasks      int `json:"weekTasks"`
}

type UpdateUserResponse struct {
	OK bool `json:"ok"`
	UserResponse
}

func NewUser(u user.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		WorkInterval:  u.WorkInterval,
		BreakInterval: u.BreakInterval,
		IntervalCount: u.IntervalCount,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func NewProfile(u user.User, s user.Stats) ProfileResponse {
	return ProfileResponse{
		UserResponse:   NewUser(u),
		TotalTasks:     s.Total,
		CompletedTasks: s.Completed,
		TodayTasks:     s.Today,
		WeekTasks:      s.Week,
	}
}

// Tasks

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=low medium high"`
	IsCompleted bool    `json:"isCompleted"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=low medium high"`
	IsCompleted *bool   `json:"isCompleted"`
}

type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    *string   `json:"priority"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TaskResponse struct {
	OK   bool `json:"ok"`
	Task Task `json:"task"`
}

type ListTasksResponse struct {
	OK    bool   `json:"ok"`
	Tasks []Task `json:"tasks"`
}

func NewTask(t task.Task) Task {
	return Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTasks(tasks []task.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTask(t))
	}

	return out
}

// Pomodoro

type UpdateSessionRequest struct {
	IsCompleted *bool `json:"isCompleted" validate:"required"`
}

type UpdateRoundRequest struct {
	TotalSeconds *int  `json:"totalSeconds" validate:"omitnil,min=1,max=3600"`
	IsCompleted  *bool `json:"isCompleted"`
}

type Round struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"pomodoroSessionId"`
	Position     int       `json:"position"`
	TotalSeconds *int      `json:"totalSeconds"`
	IsCompleted  bool      `json:"isCompleted"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	SessionDate string    `json:"sessionDate"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Rounds      []Round   `json:"rounds"`
}

func NewRound(r pomodoro.Round) Round {
	return Round{
		ID:           r.ID,
		SessionID:    r.SessionID,
		Position:     r.Position,
		TotalSeconds: r.TotalSeconds,
		IsCompleted:  r.IsCompleted,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func NewSession(s pomodoro.Session) Session {
	rounds := make([]Round, 0, len(s.Rounds))
	for _, r := range s.Rounds {
		rounds = append(rounds, NewRound(r))
	}

	return Session{
		ID:          s.ID,
		UserID:      s.UserID,
		SessionDate: s.SessionDate.Format(time.DateOnly),
		IsCompleted: s.IsCompleted,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Rounds:      rounds,
	}
}

// Time blocks

type CreateTimeBlockRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Color    *string `json:"color" validate:"omitnil,rgbhex"`
	Duration int     `json:"duration" validate:"required,min=1,max=1440"`
	Order    *int    `json:"order" validate:"omitnil,min=1"`
}

type UpdateTimeBlockRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=100"`
	Color    *string `json:"color" validate:"omitnil,rgbhex"`
	Duration *int    `json:"duration" validate:"omitnil,min=1,max=1440"`
	Order    *int    `json:"order" validate:"omitnil,min=1"`
}

type UpdateOrderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type TimeBlock struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	Duration  int       `json:"duration"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TimeBlockResponse struct {
	OK        bool      `json:"ok"`
	TimeBlock TimeBlock `json:"timeBlock"`
}

type ListTimeBlocksResponse struct {
	OK         bool        `json:"ok"`
	TimeBlocks []TimeBlock `json:"timeBlocks"`
}

func NewTimeBlock(b timeblock.TimeBlock) TimeBlock {
	return TimeBlock{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		Color:     b.Color,
		Duration:  b.Duration,
		Order:     b.Order,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func NewTimeBlocks(blocks []timeblock.TimeBlock) []TimeBlock {
	out := make([]TimeBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, NewTimeBlock(b))
	}

	return out
}
