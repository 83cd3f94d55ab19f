package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"medbot/internal/core/domain/bot"
	c "medbot/internal/core/domain/common"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/http/handlers/response"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	START_TEXT = "Hi! I will remind you to take your medication. " +
		"When a reminder arrives, reply to it with a photo of your pill to confirm the intake."
	USAGE_TEXT   = "Send a photo as a reply to a reminder to confirm your medication intake."
	FAILURE_TEXT = "Sorry 😔, your photo could not be processed. Please try again later."
)

type Handler struct {
	log              logging.Logger
	secret           string
	botMessageSender bot.MessageSender
	acknowledgements reminder.AcknowledgementPublisher
	now              func() time.Time
}

func New(
	log logging.Logger,
	secret string,
	botMessageSender bot.MessageSender,
	acknowledgements reminder.AcknowledgementPublisher,
	now func() time.Time,
) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if botMessageSender == nil {
		panic(e.NewNilArgumentError("botMessageSender"))
	}
	if acknowledgements == nil {
		panic(e.NewNilArgumentError("acknowledgements"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Handler{
		log:              log,
		secret:           secret,
		botMessageSender: botMessageSender,
		acknowledgements: acknowledgements,
		now:              now,
	}
}

type sender struct {
	ID int64 `json:"id"`
}

type chat struct {
	ID int64 `json:"id"`
}

type photoSize struct {
	FileID string `json:"file_id"`
}

type repliedMessage struct {
	ID int64 `json:"message_id"`
}

type message struct {
	ID      int64           `json:"message_id"`
	From    sender          `json:"from"`
	Chat    chat            `json:"chat"`
	Date    int64           `json:"date"`
	Text    string          `json:"text"`
	Photo   []photoSize     `json:"photo"`
	ReplyTo *repliedMessage `json:"reply_to_message"`
}

type update struct {
	ID      int64    `json:"update_id"`
	Message *message `json:"message"`
}

func (u *update) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(u)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		response.RenderNotFound(rw, "not found")
		return
	}
	defer response.Render(rw, struct{}{}, http.StatusOK)

	update := update{}
	if err := update.FromJSON(r.Body); err != nil {
		h.log.Error(
			r.Context(),
			"Could not decode Telegram update.",
			logging.Entry("err", err),
		)
		return
	}
	if update.Message == nil || update.Message.From.ID == 0 {
		h.log.Info(
			r.Context(),
			"Skip Telegram update.",
			logging.Entry("updateID", update.ID),
		)
		return
	}
	h.log.Info(
		r.Context(),
		"Got Telegram update.",
		logging.Entry("updateID", update.ID),
		logging.Entry("fromID", update.Message.From.ID),
		logging.Entry("hasPhoto", len(update.Message.Photo) > 0),
	)

	switch {
	case len(update.Message.Photo) > 0:
		h.acknowledge(r.Context(), *update.Message)
	case strings.HasPrefix(update.Message.Text, "/start"):
		h.sendBotMessage(r.Context(), update.Message.Chat.ID, START_TEXT)
	default:
		h.sendBotMessage(r.Context(), update.Message.Chat.ID, USAGE_TEXT)
	}
}

func (h *Handler) acknowledge(ctx context.Context, m message) {
	ack := reminder.Acknowledgement{
		OwnerID:    user.ID(m.From.ID),
		ReceivedAt: h.now(),
	}
	if m.ReplyTo != nil {
		ack.NotificationRef = c.Some(reminder.NotificationID(strconv.FormatInt(m.ReplyTo.ID, 10)))
	}
	if err := h.acknowledgements.PublishAcknowledgement(ctx, ack); err != nil {
		logging.Error(ctx, h.log, err, logging.Entry("ack", ack))
		h.sendBotMessage(ctx, m.Chat.ID, FAILURE_TEXT)
		return
	}
	h.log.Info(ctx, "Acknowledgement published.", logging.Entry("ack", ack))
}

func (h *Handler) sendBotMessage(ctx context.Context, chatID int64, text string) {
	_, err := h.botMessageSender.SendMessage(ctx, bot.Message{
		ChatID: bot.ChatID(chatID),
		Text:   text,
	})
	if err != nil {
		h.log.Error(
			ctx,
			"Could not send Telegram bot message due to unexpected error.",
			logging.Entry("chatID", chatID),
			logging.Entry("err", err),
		)
	}
}
