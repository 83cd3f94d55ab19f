package setusertimezone

import (
	"context"
	"errors"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
	"time"
)

type Input struct {
	UserID   user.ID
	Timezone string
}

type Result struct {
	User user.User
	// Now is the user's wall clock in the new zone.
	Now localtime.Moment
}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	resolver       localtime.Resolver
	now            func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	resolver localtime.Resolver,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if resolver == nil {
		panic(e.NewNilArgumentError("resolver"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		userRepository: userRepository,
		resolver:       resolver,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	moment, err := s.resolver.Resolve(input.Timezone)
	if err != nil {
		if errors.Is(err, localtime.ErrUnknownTimezone) {
			s.log.Info(ctx, "Unknown timezone rejected.", logging.Entry("input", input))
		} else {
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}

	_, err = s.userRepository.Ensure(ctx, user.EnsureInput{ID: input.UserID, CreatedAt: s.now()})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	u, err := s.userRepository.SetTimezone(ctx, input.UserID, moment.Zone)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	s.log.Info(ctx, "User timezone updated.", logging.Entry("userID", u.ID), logging.Entry("timezone", moment.Zone))
	return Result{User: u, Now: moment}, nil
}
