package localtime

import (
	"fmt"
	"sync"
	"time"
)

// FakeResolver resolves zones with the system database against a settable instant.
type FakeResolver struct {
	now      time.Time
	Resolved []string
	lock     sync.Mutex
}

func NewFakeResolver(now time.Time) *FakeResolver {
	return &FakeResolver{now: now}
}

func (r *FakeResolver) SetNow(now time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.now = now
}

func (r *FakeResolver) Resolve(timezone string) (Moment, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Resolved = append(r.Resolved, timezone)
	if timezone == "" {
		return Moment{}, fmt.Errorf("%w: empty name", ErrUnknownTimezone)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Moment{}, fmt.Errorf("%w: %s", ErrUnknownTimezone, timezone)
	}
	return MomentOf(r.now, loc), nil
}
