package reminder

import (
	"context"
	"fmt"
	c "medbot/internal/core/domain/common"
	"medbot/internal/core/domain/user"
	"sort"
	"sync"
	"time"
)

// FakeReminderRepository is an in-memory repository with conditional update semantics.
type FakeReminderRepository struct {
	Reminders map[ID]Reminder
	Timezones map[user.ID]string

	ListError   error
	UpdateError error
	GetError    error
	// BeforeUpdate runs before the version check, outside the lock.
	// Tests use it to simulate a concurrent writer.
	BeforeUpdate func(input UpdateInput)

	UpdateCalls   []UpdateInput
	RejectedCalls int

	nextID ID
	lock   sync.Mutex
}

func NewFakeReminderRepository() *FakeReminderRepository {
	return &FakeReminderRepository{
		Reminders: make(map[ID]Reminder),
		Timezones: make(map[user.ID]string),
	}
}

// Put stores r as is, replacing any reminder with the same ID.
func (r *FakeReminderRepository) Put(rem Reminder) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Reminders[rem.ID] = rem
	if rem.ID > r.nextID {
		r.nextID = rem.ID
	}
}

func (r *FakeReminderRepository) Get(id ID) Reminder {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reminders[id]
}

func (r *FakeReminderRepository) Create(ctx context.Context, input CreateInput) (Reminder, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextID++
	rem := Reminder{
		ID:        r.nextID,
		OwnerID:   input.OwnerID,
		TimeOfDay: input.TimeOfDay,
		Label:     input.Label,
		State:     StatePending,
		CreatedAt: input.CreatedAt,
	}
	r.Reminders[rem.ID] = rem
	return rem, nil
}

func (r *FakeReminderRepository) GetByID(ctx context.Context, id ID) (Reminder, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.GetError != nil {
		return Reminder{}, r.GetError
	}
	rem, ok := r.Reminders[id]
	if !ok {
		return Reminder{}, ErrReminderDoesNotExist
	}
	return rem, nil
}

func (r *FakeReminderRepository) ListDueCandidates(ctx context.Context) ([]Candidate, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.ListError != nil {
		return nil, r.ListError
	}
	candidates := make([]Candidate, 0, len(r.Reminders))
	for _, rem := range r.sorted() {
		tz, ok := r.Timezones[rem.OwnerID]
		candidates = append(candidates, Candidate{Reminder: rem, Timezone: c.NewOptional(tz, ok)})
	}
	return candidates, nil
}

func (r *FakeReminderRepository) ConditionalUpdate(ctx context.Context, input UpdateInput) (bool, error) {
	if r.BeforeUpdate != nil {
		r.BeforeUpdate(input)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.UpdateCalls = append(r.UpdateCalls, input)
	if r.UpdateError != nil {
		return false, r.UpdateError
	}
	rem, ok := r.Reminders[input.ID]
	if !ok {
		return false, nil
	}
	if rem.Version() != input.Expected {
		r.RejectedCalls++
		return false, nil
	}
	rem.State = input.State
	rem.LastSentOn = input.LastSentOn
	rem.LastSentAt = input.LastSentAt
	rem.LastConfirmedOn = input.LastConfirmedOn
	rem.Streak = input.Streak
	rem.LongestStreak = input.LongestStreak
	rem.NotificationID = input.NotificationID
	r.Reminders[rem.ID] = rem
	return true, nil
}

func (r *FakeReminderRepository) FindByNotificationID(
	ctx context.Context,
	ownerID user.ID,
	id NotificationID,
) (c.Optional[Reminder], error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, rem := range r.sorted() {
		if rem.OwnerID == ownerID && rem.NotificationID == c.NewOptional(id, true) {
			return c.NewOptional(rem, true), nil
		}
	}
	return c.Optional[Reminder]{}, nil
}

func (r *FakeReminderRepository) FindMostRecentUnconfirmed(
	ctx context.Context,
	ownerID user.ID,
) (c.Optional[Reminder], error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var found c.Optional[Reminder]
	for _, rem := range r.sorted() {
		if rem.OwnerID != ownerID || rem.State != StateSentUnconfirmed {
			continue
		}
		if !found.IsPresent || isSentLater(rem, found.Value) {
			found = c.NewOptional(rem, true)
		}
	}
	return found, nil
}

func (r *FakeReminderRepository) ReadByOwner(ctx context.Context, ownerID user.ID) ([]Reminder, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	reminders := make([]Reminder, 0)
	for _, rem := range r.sorted() {
		if rem.OwnerID == ownerID {
			reminders = append(reminders, rem)
		}
	}
	return reminders, nil
}

func (r *FakeReminderRepository) Delete(ctx context.Context, id ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.Reminders[id]; !ok {
		return ErrReminderDoesNotExist
	}
	delete(r.Reminders, id)
	return nil
}

func (r *FakeReminderRepository) sorted() []Reminder {
	reminders := make([]Reminder, 0, len(r.Reminders))
	for _, rem := range r.Reminders {
		reminders = append(reminders, rem)
	}
	sort.Slice(reminders, func(i, j int) bool { return reminders[i].ID < reminders[j].ID })
	return reminders
}

// isSentLater orders by send instant, reminders without one last, then by
// local send date and ID.
func isSentLater(a, b Reminder) bool {
	if a.LastSentAt.IsPresent != b.LastSentAt.IsPresent {
		return a.LastSentAt.IsPresent
	}
	if !a.LastSentAt.Value.Equal(b.LastSentAt.Value) {
		return a.LastSentAt.Value.After(b.LastSentAt.Value)
	}
	if a.LastSentOn.Value != b.LastSentOn.Value {
		return a.LastSentOn.Value.After(b.LastSentOn.Value)
	}
	return a.ID > b.ID
}

type FakeDispatcher struct {
	Dispatched []Notification
	// Errors fails dispatches for the listed reminders.
	Errors map[ID]error
	Delay  time.Duration
	lock   sync.Mutex
	seq    int
}

func NewFakeDispatcher() *FakeDispatcher {
	return &FakeDispatcher{Errors: make(map[ID]error)}
}

func (d *FakeDispatcher) Dispatch(ctx context.Context, n Notification) (NotificationID, error) {
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrDispatchFailed, ctx.Err())
		}
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if err, ok := d.Errors[n.ReminderID]; ok {
		return "", fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	d.seq++
	d.Dispatched = append(d.Dispatched, n)
	return NotificationID(fmt.Sprintf("n-%d", d.seq)), nil
}

func (d *FakeDispatcher) Count() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.Dispatched)
}

type FakeEventPublisher struct {
	Published []Reminder
	Error     error
	lock      sync.Mutex
}

func NewFakeEventPublisher() *FakeEventPublisher {
	return &FakeEventPublisher{}
}

func (p *FakeEventPublisher) PublishConfirmed(ctx context.Context, r Reminder) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.Error != nil {
		return p.Error
	}
	p.Published = append(p.Published, r)
	return nil
}

type FakeAcknowledgementPublisher struct {
	Published []Acknowledgement
	Error     error
	lock      sync.Mutex
}

func NewFakeAcknowledgementPublisher() *FakeAcknowledgementPublisher {
	return &FakeAcknowledgementPublisher{}
}

func (p *FakeAcknowledgementPublisher) PublishAcknowledgement(ctx context.Context, ack Acknowledgement) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.Error != nil {
		return p.Error
	}
	p.Published = append(p.Published, ack)
	return nil
}
