package timezoneresolver

import (
	"fmt"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"sync"
	"time"

	// Hosts without a zoneinfo database still resolve every IANA name.
	_ "time/tzdata"
)

type IANA struct {
	now       func() time.Time
	locations sync.Map
}

func NewIANA(now func() time.Time) *IANA {
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &IANA{now: now}
}

func (r *IANA) Resolve(timezone string) (localtime.Moment, error) {
	loc, err := r.load(timezone)
	if err != nil {
		return localtime.Moment{}, err
	}
	return localtime.MomentOf(r.now(), loc), nil
}

func (r *IANA) load(timezone string) (*time.Location, error) {
	if cached, ok := r.locations.Load(timezone); ok {
		return cached.(*time.Location), nil
	}
	// LoadLocation maps "" to UTC and "Local" to the host zone; neither is a user's zone.
	if timezone == "" || timezone == "Local" {
		return nil, fmt.Errorf("%w: %q", localtime.ErrUnknownTimezone, timezone)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", localtime.ErrUnknownTimezone, timezone, err)
	}
	r.locations.Store(timezone, loc)
	return loc, nil
}
