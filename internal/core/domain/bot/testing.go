package bot

import (
	"context"
	"sync"
)

type FakeMessageSender struct {
	Sent  []Message
	Error error
	lock  sync.Mutex
}

func NewFakeMessageSender() *FakeMessageSender {
	return &FakeMessageSender{}
}

func (s *FakeMessageSender) SendMessage(ctx context.Context, m Message) (MessageID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Error != nil {
		return 0, s.Error
	}
	s.Sent = append(s.Sent, m)
	return MessageID(1000 + len(s.Sent)), nil
}

func (s *FakeMessageSender) Messages() []Message {
	s.lock.Lock()
	defer s.lock.Unlock()
	sent := make([]Message, len(s.Sent))
	copy(sent, s.Sent)
	return sent
}
