package localtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-module/carbon/v2"
)

var (
	ErrUnknownTimezone  = errors.New("unknown timezone")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTimeOfDay = errors.New("invalid time of day, expected HH:MM")
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf takes the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %s", ErrInvalidDate, value)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// noon anchors calendar arithmetic so that zone offsets never move the day.
func (d Date) noon() carbon.Carbon {
	return carbon.Time2Carbon(time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC))
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.noon().AddDays(n).Carbon2Time().UTC())
}

func (d Date) PreviousDay() Date {
	return DateOf(d.noon().SubDay().Carbon2Time().UTC())
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// TimeOfDay is a wall clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func MustTimeOfDay(value string) TimeOfDay {
	t, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return t
}

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	if len(value) != 5 || value[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	hour, okHour := twoDigits(value[:2])
	minute, okMinute := twoDigits(value[3:])
	if !okHour || !okMinute {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return NewTimeOfDay(hour, minute)
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Moment is the wall clock reading of one instant in one zone.
type Moment struct {
	Instant time.Time
	Zone    string
	Date    Date
	Time    TimeOfDay
}

func MomentOf(instant time.Time, loc *time.Location) Moment {
	local := instant.In(loc)
	return Moment{
		Instant: instant,
		Zone:    loc.String(),
		Date:    DateOf(local),
		Time:    TimeOfDayOf(local),
	}
}

// Resolver maps an IANA zone name to the current local date and time.
// It returns an error wrapping ErrUnknownTimezone for names it can't load.
type Resolver interface {
	Resolve(timezone string) (Moment, error)
}
