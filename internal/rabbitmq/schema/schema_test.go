package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalAcknowledgement(t *testing.T) {
	cases := []struct {
		id  string
		raw string
		ref *string
		err bool
	}{
		{id: "with reference", raw: `{"owner_id":7,"notification_ref":"101","received_at":"2024-05-10T07:05:00Z"}`, ref: ptr("101")},
		{id: "null reference", raw: `{"owner_id":7,"notification_ref":null}`},
		{id: "missing owner", raw: `{"notification_ref":"101"}`, err: true},
		{id: "not json", raw: `photo`, err: true},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			ack := &Acknowledgement{}
			err := ack.Unmarshal([]byte(testcase.raw))

			assert := require.New(t)
			if testcase.err {
				assert.Error(err)
				return
			}
			assert.Nil(err)
			assert.Equal(int64(7), ack.OwnerID)
			assert.Equal(testcase.ref, ack.NotificationRef)
		})
	}
}

func ptr(s string) *string {
	return &s
}
