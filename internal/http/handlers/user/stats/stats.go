package stats

import (
	"errors"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
	service "medbot/internal/core/services/get_user_stats"
	"medbot/internal/http/handlers/auth"
	"medbot/internal/http/handlers/response"
	"net/http"
)

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(
	service services.Service[service.Input, service.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Result struct {
	Reminders      int     `json:"reminders"`
	ConfirmedToday int     `json:"confirmed_today"`
	CurrentStreak  uint32  `json:"current_streak"`
	LongestStreak  uint32  `json:"longest_streak"`
	Today          *string `json:"today"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		response.RenderError(rw, "invalid user id", http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserDoesNotExist):
			response.RenderNotFound(rw, "user not found")
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	res := Result{
		Reminders:      result.Reminders,
		ConfirmedToday: result.ConfirmedToday,
		CurrentStreak:  result.CurrentStreak,
		LongestStreak:  result.LongestStreak,
	}
	if result.Today.IsPresent {
		today := result.Today.Value.String()
		res.Today = &today
	}
	response.Render(rw, res, http.StatusOK)
}
