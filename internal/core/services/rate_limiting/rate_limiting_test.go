package ratelimiting

import (
	"context"
	"medbot/internal/core/domain/logging"
	ratelimiter "medbot/internal/core/domain/rate_limiter"
	"medbot/internal/core/services"
	"testing"

	"github.com/stretchr/testify/suite"
)

type input struct {
	Value string
}

func (i input) GetRateLimitKey() string {
	return "test-rate-limiting-key::" + i.Value
}

type result struct {
	Echo string
}

type stubService struct {
	Calls int
}

func (s *stubService) Run(ctx context.Context, input input) (result, error) {
	s.Calls++
	return result{Echo: input.Value}, nil
}

type testRateLimitingSuite struct {
	suite.Suite
	Logger      *logging.FakeLogger
	RateLimiter *ratelimiter.FakeRateLimiter
	Inner       *stubService
}

func (suite *testRateLimitingSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.RateLimiter = ratelimiter.NewFakeRateLimiter(true)
	suite.Inner = &stubService{}
}

func TestRateLimitingService(t *testing.T) {
	suite.Run(t, new(testRateLimitingSuite))
}

func (suite *testRateLimitingSuite) service() services.Service[input, result] {
	return WithRateLimiting[input, result](
		suite.Logger,
		suite.RateLimiter,
		ratelimiter.Limit{Value: 10, Interval: ratelimiter.Minute},
		suite.Inner,
	)
}

func (suite *testRateLimitingSuite) TestNotLimited() {
	// Exercise ---
	res, err := suite.service().Run(context.Background(), input{Value: "test"})

	// Verify ---
	assert := suite.Require()
	assert.Nil(err)
	assert.Equal("test", res.Echo)
	assert.Equal(1, suite.Inner.Calls)
	assert.Equal([]string{"test-rate-limiting-key::test"}, suite.RateLimiter.Checked)
	assert.Empty(suite.Logger.ByLevel(logging.WARNING))
}

func (suite *testRateLimitingSuite) TestLimited() {
	// Setup ---
	suite.RateLimiter.IsAllowed = false

	// Exercise ---
	_, err := suite.service().Run(context.Background(), input{Value: "test"})

	// Verify ---
	assert := suite.Require()
	assert.ErrorIs(err, ratelimiter.ErrRateLimitExceeded)
	assert.Equal(0, suite.Inner.Calls)
	assert.Len(suite.Logger.ByLevel(logging.WARNING), 1)
}
