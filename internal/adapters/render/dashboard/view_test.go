package dashboard

import (
	"testing"
	"time"

	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clockAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.Local)
}

func lab(start, end time.Time) domain.Session {
	return domain.Session{
		ID:        "s-1",
		Subject:   domain.Subject{Name: "Physics Lab", Code: "PHY101"},
		StartsAt:  start,
		EndsAt:    end,
		CreatedAt: start.Add(-time.Hour),
		Active:    true,
	}
}

func TestRenderStudentOpenSession(t *testing.T) {
	now := clockAt(10, 12)
	student := domain.Actor{ID: "stu-1", Role: domain.RoleStudent}
	views := application.BuildSessionViews([]domain.Session{lab(clockAt(10, 0), clockAt(10, 20))}, student, now, nil)

	output, err := Render(Snapshot{
		Actor: student,
		Views: views,
		Deltas: []domain.Delta{
			{Category: domain.CategorySessions, Unseen: 1, Total: 1},
			{Category: domain.CategoryUpdates, Unseen: 0, Total: 4},
		},
	}, RenderOptions{Now: now, BarWidth: 10})

	require.NoError(t, err)
	assert.Contains(t, output, "Active Sessions")
	assert.Contains(t, output, "sessions: 1")
	assert.Contains(t, output, "sessions 1 new")
	assert.Contains(t, output, "updates 0 new")
	assert.Contains(t, output, "Physics Lab (PHY101)")
	assert.Contains(t, output, "10:00 - 10:20")
	assert.Contains(t, output, "8m 0s remaining")
	assert.Contains(t, output, "[mark]")
	assert.Contains(t, output, "====")
}

func TestRenderStudentStates(t *testing.T) {
	now := clockAt(10, 12)
	student := domain.Actor{ID: "stu-1", Role: domain.RoleStudent}

	tests := []struct {
		name    string
		session domain.Session
		state   application.MarkState
		want    string
		absent  string
	}{
		{name: "marked", session: lab(clockAt(10, 0), clockAt(10, 20)), state: application.MarkMarked, want: "Present", absent: "[mark]"},
		{name: "marking", session: lab(clockAt(10, 0), clockAt(10, 20)), state: application.MarkMarking, want: "Marking...", absent: "[mark]"},
		{name: "upcoming", session: lab(clockAt(11, 0), clockAt(11, 20)), state: application.MarkIneligible, want: "Upcoming", absent: "remaining"},
		{name: "expired", session: lab(clockAt(9, 0), clockAt(9, 20)), state: application.MarkIneligible, want: "Expired", absent: "[mark]"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			views := application.BuildSessionViews([]domain.Session{tc.session}, student, now, func(domain.SessionID) application.MarkState {
				return tc.state
			})

			output, err := Render(Snapshot{Actor: student, Views: views}, RenderOptions{Now: now})
			require.NoError(t, err)
			assert.Contains(t, output, tc.want)
			assert.NotContains(t, output, tc.absent)
		})
	}
}

func TestRenderAdminShowsAttendanceCounts(t *testing.T) {
	now := clockAt(10, 12)
	admin := domain.Actor{ID: "adm-1", Role: domain.RoleAdmin}
	session := lab(clockAt(10, 0), clockAt(10, 20))
	session.AttendanceCount = 17

	views := application.BuildSessionViews([]domain.Session{session}, admin, now, nil)
	output, err := Render(Snapshot{Actor: admin, Views: views}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "Attendance Sessions (admin)")
	assert.Contains(t, output, "present: 17")
	assert.NotContains(t, output, "[mark]")
}

func TestRenderEmptyDashboard(t *testing.T) {
	output, err := Render(Snapshot{Actor: domain.Actor{ID: "stu-1", Role: domain.RoleStudent}}, RenderOptions{Now: clockAt(10, 0)})

	require.NoError(t, err)
	assert.Contains(t, output, "sessions: 0")
	assert.Contains(t, output, "No sessions open for you right now.")
}

func TestRenderWindowOnAnotherDayIncludesDate(t *testing.T) {
	now := clockAt(10, 0)
	student := domain.Actor{ID: "stu-1", Role: domain.RoleStudent}
	tomorrow := lab(clockAt(10, 0).AddDate(0, 0, 1), clockAt(10, 20).AddDate(0, 0, 1))

	views := application.BuildSessionViews([]domain.Session{tomorrow}, student, now, nil)
	output, err := Render(Snapshot{Actor: student, Views: views}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "10:00 on 03 Mar - 10:20")
}

func TestRenderUpdates(t *testing.T) {
	now := clockAt(10, 30)

	output, err := RenderUpdates([]domain.Update{
		{ID: "u-2", Title: "Quiz", Body: "Bring calculators", Author: "Dr. Ada", CreatedAt: clockAt(10, 0)},
		{ID: "u-1", Title: "Lab moved", Body: "Room 4 is closed", ImageURL: "https://cdn.example/room.png", CreatedAt: clockAt(8, 0)},
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "updates: 2")
	assert.Contains(t, output, "Quiz")
	assert.Contains(t, output, "posted 30m ago by Dr. Ada")
	assert.Contains(t, output, "posted 2h ago")
	assert.Contains(t, output, "image: https://cdn.example/room.png")
}

func TestRenderNoUpdates(t *testing.T) {
	output, err := RenderUpdates(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No updates posted.")
}
