package schema

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidAcknowledgement = errors.New("invalid acknowledgement message")

type Acknowledgement struct {
	OwnerID         int64     `json:"owner_id"`
	NotificationRef *string   `json:"notification_ref"`
	ReceivedAt      time.Time `json:"received_at"`
}

func (a *Acknowledgement) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Acknowledgement) Unmarshal(data []byte) error {
	if err := json.Unmarshal(data, a); err != nil {
		return err
	}
	if a.OwnerID == 0 {
		return ErrInvalidAcknowledgement
	}
	return nil
}
