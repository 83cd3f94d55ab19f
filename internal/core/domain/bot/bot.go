package bot

import (
	"context"
	c "medbot/internal/core/domain/common"
)

type ChatID int64

type MessageID int64

type Message struct {
	ChatID           ChatID
	Text             string
	ReplyToMessageID c.Optional[MessageID]
}

type MessageSender interface {
	SendMessage(ctx context.Context, m Message) (MessageID, error)
}
