package reminder

import "medbot/internal/core/domain/localtime"

type Decision struct {
	v string
}

func (d Decision) String() string {
	return d.v
}

var (
	NotYetDue        = Decision{v: "not_yet_due"}
	DueSend          = Decision{v: "due_send"}
	AlreadySentToday = Decision{v: "already_sent_today"}
)

// EvaluateDue decides whether r must be sent at the local moment now.
// A LastSentOn later than the current local date counts as already sent: it
// happens when the owner switches to a zone that is behind the one used for
// the previous send.
func EvaluateDue(r Reminder, now localtime.Moment) Decision {
	if r.LastSentOn.IsPresent && !r.LastSentOn.Value.Before(now.Date) {
		return AlreadySentToday
	}
	if !now.Time.Before(r.TimeOfDay) {
		return DueSend
	}
	return NotYetDue
}
