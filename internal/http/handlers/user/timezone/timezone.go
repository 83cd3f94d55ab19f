package timezone

import (
	"encoding/json"
	"errors"
	"io"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/services"
	service "medbot/internal/core/services/set_user_timezone"
	"medbot/internal/http/handlers/auth"
	"medbot/internal/http/handlers/response"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

const MAX_TIMEZONE_LENGTH = 64

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

type Input struct {
	Timezone string `json:"timezone"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Timezone, validation.Required, validation.Length(1, MAX_TIMEZONE_LENGTH)),
	)
}

type Result struct {
	UserID    int64  `json:"user_id"`
	Timezone  string `json:"timezone"`
	LocalDate string `json:"local_date"`
	LocalTime string `json:"local_time"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		response.RenderError(rw, "invalid user id", http.StatusBadRequest)
		return
	}

	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderValidationError(rw, err)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{UserID: userID, Timezone: input.Timezone})
	if err != nil {
		switch {
		case errors.Is(err, localtime.ErrUnknownTimezone):
			response.RenderError(rw, "unknown timezone", http.StatusUnprocessableEntity)
		default:
			response.RenderInternalError(rw)
		}
		return
	}
	response.Render(
		rw,
		Result{
			UserID:    int64(result.User.ID),
			Timezone:  result.User.Timezone.Value,
			LocalDate: result.Now.Date.String(),
			LocalTime: result.Now.Time.String(),
		},
		http.StatusOK,
	)
}
