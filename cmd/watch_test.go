package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/classence-cli/internal/adapters/render/dashboard"
	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports/mocks"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type steppedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisplayTimerRedrawsWithoutPolling(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	clock := &steppedClock{now: start.Add(19*time.Minute + 30*time.Second)}
	actor := domain.Actor{ID: "stu-1", Role: domain.RoleStudent}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	source := mocks.NewMockSessionSource(t)
	source.EXPECT().FetchActiveSessions(mock.Anything, actor).Return([]domain.Session{{
		ID:        "s-1",
		Subject:   domain.Subject{Name: "Materials Science", Code: "MME 105"},
		StartsAt:  start,
		EndsAt:    start.Add(20 * time.Minute),
		CreatedAt: start,
		Attended:  domain.AttendanceAbsent,
		Active:    true,
	}}, nil).Once()

	registry := application.NewSessionRegistry(source, actor, logger, nil)
	tracker := application.NewDeltaTracker(mocks.NewMockCheckpointStore(t), clock, logger)
	a := &app{
		actor:           actor,
		log:             logger,
		clock:           clock,
		registry:        registry,
		marking:         application.NewMarkingCoordinator(registry, mocks.NewMockAttendanceSubmitter(t), clock, logger, nil),
		feed:            application.NewNotificationFeed(mocks.NewMockUpdateSource(t), mocks.NewMockNotificationSessionSource(t), tracker, actor, logger, nil),
		renderDashboard: dashboard.Render,
	}

	_, err := registry.Refresh(context.Background())
	require.NoError(t, err)

	out := &lockedBuffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	screen := &dashboardScreen{cmd: cmd, app: a}

	ctx, cancel := context.WithCancel(context.Background())
	trigger := application.NewManualTrigger()
	done := make(chan struct{})
	go func() {
		defer close(done)
		runDisplay(ctx, trigger, screen.redraw)
	}()

	trigger.Fire()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "0m 30s remaining")
	}, 2*time.Second, 10*time.Millisecond)

	out.Reset()
	clock.Set(start.Add(20*time.Minute + 5*time.Second))
	trigger.Fire()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Expired")
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, out.String(), "[mark]")

	cancel()
	<-done
}

func TestWatchRejectsNonPositiveRedraw(t *testing.T) {
	_, _, err := executeCLI(t, "watch", "--redraw", "0s")
	require.ErrorIs(t, err, errRedrawInterval)
}
