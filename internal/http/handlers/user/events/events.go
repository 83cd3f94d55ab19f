package events

import (
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	"medbot/internal/http/handlers/auth"
	"medbot/internal/http/handlers/response"
	eventpublisher "medbot/internal/implementations/event_publisher"
	"net/http"

	"github.com/r3labs/sse/v2"
)

// Handler streams confirmation events of one user.
type Handler struct {
	log       logging.Logger
	sseServer *sse.Server
}

func New(log logging.Logger, sseServer *sse.Server) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sseServer == nil {
		panic(e.NewNilArgumentError("sseServer"))
	}
	return &Handler{log: log, sseServer: sseServer}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		response.RenderError(rw, "invalid user id", http.StatusBadRequest)
		return
	}

	streamID := eventpublisher.StreamID(int64(userID))
	if !h.sseServer.StreamExists(streamID) {
		h.sseServer.CreateStream(streamID)
	}
	query := r.URL.Query()
	query.Set("stream", streamID)
	r.URL.RawQuery = query.Encode()

	h.log.Info(
		r.Context(),
		"Subscribed to user events.",
		logging.Entry("userID", userID),
		logging.Entry("streamID", streamID),
	)
	h.sseServer.ServeHTTP(rw, r)
	h.log.Info(r.Context(), "Unsubscribed from user events.", logging.Entry("userID", userID))
}
