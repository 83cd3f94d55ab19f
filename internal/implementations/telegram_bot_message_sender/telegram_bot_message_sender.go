package telegrambotmessagesender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"medbot/internal/core/domain/bot"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

type sendMessageRequest struct {
	ChatID           int64  `json:"chat_id"`
	Text             string `json:"text"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

type setWebhookRequest struct {
	URL            string   `json:"url"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type response struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

// TelegramBotMessageSender talks to the Bot API. Outgoing calls share one
// token bucket so bursts of due reminders stay under Telegram's flood limits.
type TelegramBotMessageSender struct {
	httpClient http.Client
	baseURL    url.URL
	token      string
	limiter    *rate.Limiter
}

func New(
	baseURL url.URL,
	token string,
	timeout time.Duration,
	messagesPerSecond float64,
) *TelegramBotMessageSender {
	return &TelegramBotMessageSender{
		baseURL:    baseURL,
		token:      token,
		httpClient: http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(messagesPerSecond), 1),
	}
}

func (s *TelegramBotMessageSender) SendMessage(ctx context.Context, m bot.Message) (bot.MessageID, error) {
	payload := sendMessageRequest{ChatID: int64(m.ChatID), Text: m.Text}
	if m.ReplyToMessageID.IsPresent {
		payload.ReplyToMessageID = int64(m.ReplyToMessageID.Value)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	var sent sentMessage
	if err := s.call(ctx, "sendMessage", payload, &sent); err != nil {
		return 0, err
	}
	return bot.MessageID(sent.MessageID), nil
}

func (s *TelegramBotMessageSender) SetWebhook(ctx context.Context, webhookURL string) error {
	return s.call(ctx, "setWebhook", setWebhookRequest{URL: webhookURL, AllowedUpdates: []string{"message"}}, nil)
}

func (s *TelegramBotMessageSender) call(ctx context.Context, method string, payload any, result any) error {
	endpoint := s.baseURL.JoinPath(fmt.Sprintf("bot%s", s.token), method)
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &body)
	if err != nil {
		return err
	}
	request.Header.Add("content-type", "application/json")
	resp, err := s.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("got unsuccessful response from Telegram %s: %d %s", method, resp.StatusCode, string(raw))
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("could not decode Telegram %s response: %w", method, err)
	}
	if !decoded.OK {
		return fmt.Errorf("telegram %s failed: %s", method, decoded.Description)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(decoded.Result, result)
}
