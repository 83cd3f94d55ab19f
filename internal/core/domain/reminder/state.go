package reminder

import "errors"

var ErrParseState = errors.New("invalid confirmation state")

type State struct {
	v string
}

func (s State) String() string {
	return s.v
}

func ParseState(value string) (State, error) {
	switch value {
	case "pending":
		return StatePending, nil
	case "sent_unconfirmed":
		return StateSentUnconfirmed, nil
	case "confirmed":
		return StateConfirmed, nil
	default:
		return StateUnknown, ErrParseState
	}
}

var (
	StateUnknown         = State{}
	StatePending         = State{v: "pending"}
	StateSentUnconfirmed = State{v: "sent_unconfirmed"}
	StateConfirmed       = State{v: "confirmed"}
)
