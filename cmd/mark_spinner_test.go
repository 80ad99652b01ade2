package cmd

import (
	"testing"
	"time"

	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMarkSpinnerShowsSession(t *testing.T) {
	ends := time.Date(2026, 3, 2, 10, 15, 0, 0, time.Local)
	session := domain.Session{
		ID:       "s-1",
		Subject:  domain.Subject{Name: "Algorithms", Code: "CS101"},
		StartsAt: ends.Add(-15 * time.Minute),
		EndsAt:   ends,
	}

	m := newMarkSpinnerModel(session, nil)
	view := m.View()
	assert.Contains(t, view, "Marking attendance for")
	assert.Contains(t, view, "Algorithms (CS101)")
	assert.Contains(t, view, "(closes 10:15)")

	updated, cmd := m.Update(markDoneMsg{outcome: application.MarkOutcome{SessionID: "s-1", State: application.MarkMarked}})
	assert.NotNil(t, cmd)
	final := updated.(markSpinnerModel)
	assert.True(t, final.done)
	assert.Equal(t, application.MarkMarked, final.outcome.State)
	assert.Empty(t, final.View())
}
