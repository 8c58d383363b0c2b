package health

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) HealthPing(context.Context) error { return f.err }

type fakeChecker struct{ healthy bool }

func (f fakeChecker) Name() string                         { return "fake" }
func (f fakeChecker) IsHealthy() bool                      { return f.healthy }
func (f fakeChecker) Start(context.Context, time.Duration) {}

func TestPingChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	up := NewPingChecker("store", fakePinger{}, zerolog.Nop(), time.Second)
	assert.False(t, up.IsHealthy(), "starts unhealthy before first probe")
	go up.Start(ctx, 10*time.Millisecond)

	down := NewPingChecker("insight", fakePinger{err: fmt.Errorf("unreachable")}, zerolog.Nop(), time.Second)
	go down.Start(ctx, 10*time.Millisecond)

	require.Eventually(t, up.IsHealthy, time.Second, 5*time.Millisecond)
	assert.False(t, down.IsHealthy())
}

func TestServiceHealthChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewServiceHealthChecker(zerolog.Nop(), fakeChecker{healthy: true}, fakeChecker{healthy: true})
	go svc.Start(ctx, 10*time.Millisecond)
	require.Eventually(t, svc.IsHealthy, time.Second, 5*time.Millisecond)

	degraded := NewServiceHealthChecker(zerolog.Nop(), fakeChecker{healthy: true}, fakeChecker{healthy: false})
	go degraded.Start(ctx, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, degraded.IsHealthy())
}

func TestWaitUntilHealthy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewServiceHealthChecker(zerolog.Nop(), fakeChecker{healthy: true})
	go svc.Start(ctx, 10*time.Millisecond)
	assert.NoError(t, WaitUntilHealthy(ctx, svc, time.Second))

	never := NewServiceHealthChecker(zerolog.Nop(), fakeChecker{healthy: false})
	go never.Start(ctx, 10*time.Millisecond)
	assert.Error(t, WaitUntilHealthy(ctx, never, 100*time.Millisecond))
}
