package deletereminder

import (
	"errors"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/services"
	service "medbot/internal/core/services/delete_reminder"
	"medbot/internal/http/handlers/auth"
	"medbot/internal/http/handlers/response"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
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

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		response.RenderError(rw, "invalid user id", http.StatusBadRequest)
		return
	}
	reminderID, err := strconv.ParseInt(chi.URLParam(r, "reminderID"), 10, 64)
	if err != nil {
		response.RenderError(rw, "invalid reminder id", http.StatusBadRequest)
		return
	}

	_, err = h.service.Run(r.Context(), service.Input{UserID: userID, ReminderID: reminder.ID(reminderID)})
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrReminderDoesNotExist), errors.Is(err, reminder.ErrReminderPermission):
			response.RenderNotFound(rw, "reminder not found")
		default:
			response.RenderInternalError(rw)
		}
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}
