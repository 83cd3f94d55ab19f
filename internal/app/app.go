package app

import (
	"fmt"
	"medbot/internal/app/deps"
	"medbot/internal/app/services"
	"medbot/internal/http/handlers/auth"
	createreminder "medbot/internal/http/handlers/reminders/create_reminder"
	deletereminder "medbot/internal/http/handlers/reminders/delete_reminder"
	listuserreminders "medbot/internal/http/handlers/reminders/list_user_reminders"
	"medbot/internal/http/handlers/response"
	"medbot/internal/http/handlers/telegram"
	"medbot/internal/http/handlers/user/events"
	"medbot/internal/http/handlers/user/stats"
	"medbot/internal/http/handlers/user/timezone"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	userRouter := chi.NewRouter()
	userRouter.Use(auth.RequireAPIToken(deps.Config.APIToken))
	userRouter.Method(http.MethodPut, "/timezone", timezone.New(s.SetUserTimezone))
	userRouter.Method(http.MethodGet, "/stats", stats.New(s.GetUserStats))
	userRouter.Method(http.MethodGet, "/events", events.New(deps.Logger, deps.SseServer))
	userRouter.Method(http.MethodPost, "/reminders", createreminder.New(s.CreateReminder))
	userRouter.Method(http.MethodGet, "/reminders", listuserreminders.New(s.ListUserReminders))
	userRouter.Method(
		http.MethodDelete,
		"/reminders/{reminderID:[0-9]+}",
		deletereminder.New(s.DeleteReminder),
	)

	telegramRouter := chi.NewRouter()
	telegramRouter.Method(
		http.MethodPost,
		"/updates/{secret}",
		telegram.New(
			deps.Logger,
			deps.Config.TelegramURLSecret,
			deps.BotMessageSender,
			deps.AcknowledgementPublisher,
			deps.Now,
		),
	)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Get("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		response.Render(rw, struct {
			Status string `json:"status"`
		}{Status: "ok"}, http.StatusOK)
	})
	router.Mount("/api/users/{userID:[0-9]+}", userRouter)
	router.Mount("/telegram", telegramRouter)

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler:           router,
		Addr:              address,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
