package handlers

import (
	"net/http"

	"pomodoro/internal/api/middleware"
	"pomodoro/internal/api/respond"
	"pomodoro/internal/apperror"
	"pomodoro/internal/db"
	"pomodoro/internal/services/auth"
	"pomodoro/internal/services/hub"
	"pomodoro/internal/services/pomodoro"
	"pomodoro/internal/services/task"
	"pomodoro/internal/services/timeblock"
	"pomodoro/internal/services/user"
	"pomodoro/pkg/config"
	"pomodoro/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Handlers interface {
	Health(w http.ResponseWriter, r *http.Request)
	OpenAPI(w http.ResponseWriter, r *http.Request)
	SwaggerUI(w http.ResponseWriter, r *http.Request)
	ReDoc(w http.ResponseWriter, r *http.Request)

	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	RefreshAccessToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)

	GetUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)

	ListTasks(w http.ResponseWriter, r *http.Request)
	CreateTask(w http.ResponseWriter, r *http.Request)
	UpdateTask(w http.ResponseWriter, r *http.Request)
	DeleteTask(w http.ResponseWriter, r *http.Request)

	CreateSession(w http.ResponseWriter, r *http.Request)
	TodaySession(w http.ResponseWriter, r *http.Request)
	UpdateSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	UpdateRound(w http.ResponseWriter, r *http.Request)

	ListTimeBlocks(w http.ResponseWriter, r *http.Request)
	CreateTimeBlock(w http.ResponseWriter, r *http.Request)
	UpdateTimeBlock(w http.ResponseWriter, r *http.Request)
	DeleteTimeBlock(w http.ResponseWriter, r *http.Request)
	UpdateTimeBlockOrder(w http.ResponseWriter, r *http.Request)

	HandleWebsocket(w http.ResponseWriter, r *http.Request)
}

type handlers struct {
	logger  logger.Logger
	configs config.Configs
	db      db.Database

	hubService       hub.Service
	authService      auth.Service
	userService      user.Service
	taskService      task.Service
	pomodoroService  pomodoro.Service
	timeBlockService timeblock.Service
}

type Params struct {
	fx.In
	Logger           logger.Logger
	Configs          config.Configs
	DB               db.Database
	HubService       hub.Service
	AuthService      auth.Service
	UserService      user.Service
	TaskService      task.Service
	PomodoroService  pomodoro.Service
	TimeBlockService timeblock.Service
}

func New(p Params) Handlers {
	return &handlers{
		logger:           p.Logger,
		configs:          p.Configs,
		db:               p.DB,
		hubService:       p.HubService,
		authService:      p.AuthService,
		userService:      p.UserService,
		taskService:      p.TaskService,
		pomodoroService:  p.PomodoroService,
		timeBlockService: p.TimeBlockService,
	}
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	respond.Error(w, r, h.logger, err)
}

// pathID returns the {id} route variable. Anything that is not a UUID cannot
// name a stored row, so it is reported as not found.
func pathID(r *http.Request, resource string) (string, error) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", apperror.NotFound(resource, id)
	}

	return id, nil
}

func currentUser(r *http.Request) string {
	return middleware.UserID(r.Context())
}
