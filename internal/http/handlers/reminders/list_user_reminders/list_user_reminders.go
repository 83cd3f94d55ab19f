package listuserreminders

import (
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/services"
	service "medbot/internal/core/services/list_user_reminders"
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
	Reminders []response.Reminder `json:"reminders"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		response.RenderError(rw, "invalid user id", http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{UserID: userID})
	if err != nil {
		response.RenderInternalError(rw)
		return
	}
	response.Render(rw, Result{Reminders: response.FromDomainReminders(result.Reminders)}, http.StatusOK)
}
