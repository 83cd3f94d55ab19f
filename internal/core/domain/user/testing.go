package user

import (
	"context"
	c "medbot/internal/core/domain/common"
	"sync"
)

type FakeUserRepository struct {
	Users       map[ID]User
	GetError    error
	EnsureError error
	lock        sync.Mutex
}

func NewFakeUserRepository(users ...User) *FakeUserRepository {
	repo := &FakeUserRepository{Users: make(map[ID]User, len(users))}
	for _, u := range users {
		repo.Users[u.ID] = u
	}
	return repo
}

func (r *FakeUserRepository) GetByID(ctx context.Context, id ID) (User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.GetError != nil {
		return User{}, r.GetError
	}
	u, ok := r.Users[id]
	if !ok {
		return User{}, ErrUserDoesNotExist
	}
	return u, nil
}

func (r *FakeUserRepository) Ensure(ctx context.Context, input EnsureInput) (User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.EnsureError != nil {
		return User{}, r.EnsureError
	}
	if u, ok := r.Users[input.ID]; ok {
		return u, nil
	}
	u := User{ID: input.ID, CreatedAt: input.CreatedAt}
	r.Users[u.ID] = u
	return u, nil
}

func (r *FakeUserRepository) SetTimezone(ctx context.Context, id ID, timezone string) (User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return User{}, ErrUserDoesNotExist
	}
	u.Timezone = c.NewOptional(timezone, true)
	r.Users[id] = u
	return u, nil
}
