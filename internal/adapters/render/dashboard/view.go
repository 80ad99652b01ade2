package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type Snapshot struct {
	Actor  domain.Actor
	Views  []application.SessionView
	Deltas []domain.Delta
}

type RenderOptions struct {
	Now      time.Time
	BarWidth int
}

const defaultBarWidth = 20

func renderDashboard(snapshot Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(dashboardTitle(snapshot.Actor)),
		headerLine(snapshot, s),
	}

	if len(snapshot.Views) == 0 {
		lines = append(lines, s.empty.Render(emptyMessage(snapshot.Actor)))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, view := range snapshot.Views {
		lines = append(lines, s.section.Render(renderSession(view, snapshot.Actor, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func dashboardTitle(actor domain.Actor) string {
	if actor.IsAdmin() {
		return "Attendance Sessions (admin)"
	}
	return "Active Sessions"
}

func emptyMessage(actor domain.Actor) string {
	if actor.IsAdmin() {
		return "No active attendance sessions."
	}
	return "No sessions open for you right now."
}

func headerLine(snapshot Snapshot, s styles) string {
	parts := []string{s.header.Render(fmt.Sprintf("sessions: %d", len(snapshot.Views)))}
	for _, delta := range snapshot.Deltas {
		parts = append(parts, " ", badge(delta, s))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func badge(delta domain.Delta, s styles) string {
	label := fmt.Sprintf("%s %d new", delta.Category, delta.Unseen)
	if delta.Unseen == 0 {
		return s.badgeQuiet.Render(label)
	}
	return s.badge.Render(label)
}

func renderSession(view application.SessionView, actor domain.Actor, opts RenderOptions, s styles) string {
	session := view.Session
	parts := []string{
		s.subject.Render(session.Label()),
		s.detail.Render(windowLine(session, opts.Now)),
	}

	if actor.IsAdmin() {
		parts = append(parts, s.detail.Render(fmt.Sprintf("present: %d", session.AttendanceCount)))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts, statusLine(view, opts, s))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func windowLine(session domain.Session, now time.Time) string {
	start := session.StartsAt.Local()
	end := session.EndsAt.Local()
	if now.IsZero() || !sameDay(start, now.Local()) {
		return fmt.Sprintf("%s - %s", start.Format("15:04 on 02 Jan"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04"))
}

func sameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

func statusLine(view application.SessionView, opts RenderOptions, s styles) string {
	switch view.State {
	case application.MarkMarked:
		return s.success.Render("Present")
	case application.MarkMarking:
		return s.warning.Render("Marking...")
	}

	switch view.Phase {
	case domain.PhaseUpcoming:
		return s.empty.Render(view.Phase.Label())
	case domain.PhaseExpired:
		return s.expired.Render(domain.FormatRemaining(0))
	}

	width := opts.BarWidth
	if width <= 0 {
		width = defaultBarWidth
	}

	total := view.Session.EndsAt.Sub(view.Session.StartsAt)
	fraction := 0.0
	if total > 0 {
		fraction = view.Remaining.Seconds() / total.Seconds()
	}

	remainingStyle := lipgloss.NewStyle().Foreground(interpolateColor(fraction, 0, 1))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderProgressBar(fraction, width, s),
		" ",
		remainingStyle.Render(view.RemainingLabel),
		" ",
		s.warning.Render("[mark]"),
	)
}

func renderProgressBar(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampFraction(fraction)))
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", width-filled))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// interpolateColor maps value onto the 240-255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := clampFraction((value - min) / (max - min))
	code := int(240.0 + 15.0*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", code))
}

func renderUpdates(updates []domain.Update, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Updates"),
		s.header.Render(fmt.Sprintf("updates: %d", len(updates))),
	}

	if len(updates) == 0 {
		lines = append(lines, s.empty.Render("No updates posted."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, update := range updates {
		lines = append(lines, s.section.Render(renderUpdate(update, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderUpdate(update domain.Update, opts RenderOptions, s styles) string {
	meta := formatPosted(update.CreatedAt, opts.Now)
	if update.Author != "" {
		meta = fmt.Sprintf("%s by %s", meta, update.Author)
	}

	parts := []string{
		s.subject.Render(update.Title),
		s.author.Render(meta),
	}
	if body := strings.TrimSpace(update.Body); body != "" {
		parts = append(parts, s.detail.Render(body))
	}
	if update.ImageURL != "" {
		parts = append(parts, s.detail.Render("image: "+update.ImageURL))
	}
	if update.AudioURL != "" {
		parts = append(parts, s.detail.Render("audio: "+update.AudioURL))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func formatPosted(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return "posted at unknown time"
	}
	if now.IsZero() || createdAt.After(now) {
		return "posted " + createdAt.Local().Format("15:04 on 02 Jan")
	}

	ago := now.Sub(createdAt)
	switch {
	case ago < time.Minute:
		return "posted just now"
	case ago < time.Hour:
		return fmt.Sprintf("posted %dm ago", int(ago/time.Minute))
	case ago < 24*time.Hour:
		return fmt.Sprintf("posted %dh ago", int(ago/time.Hour))
	default:
		return "posted " + createdAt.Local().Format("15:04 on 02 Jan")
	}
}
