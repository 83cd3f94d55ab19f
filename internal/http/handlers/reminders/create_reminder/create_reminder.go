package createreminder

import (
	"encoding/json"
	"errors"
	"io"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/services"
	service "medbot/internal/core/services/create_reminder"
	"medbot/internal/http/handlers/auth"
	"medbot/internal/http/handlers/response"
	"net/http"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

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
	Time  string `json:"time"`
	Label string `json:"label"`
}

type Result struct {
	Reminder    response.Reminder `json:"reminder"`
	HasTimezone bool              `json:"has_timezone"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Time, validation.Required, validation.Match(timeOfDayPattern)),
		validation.Field(&i.Label, validation.Length(0, service.MAX_LABEL_LENGTH)),
	)
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
	timeOfDay, err := localtime.ParseTimeOfDay(input.Time)
	if err != nil {
		response.RenderError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		service.Input{OwnerID: userID, TimeOfDay: timeOfDay, Label: input.Label},
	)
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrLabelTooLong):
			response.RenderError(rw, err.Error(), http.StatusUnprocessableEntity)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	rem := response.Reminder{}
	rem.FromDomainType(result.Reminder)
	response.Render(rw, Result{Reminder: rem, HasTimezone: result.HasTimezone}, http.StatusCreated)
}
