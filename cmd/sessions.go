package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/classence-cli/internal/adapters/render/dashboard"
	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/spf13/cobra"
)

type sessionOutput struct {
	ID              domain.SessionID `json:"id"`
	Subject         string           `json:"subject"`
	SubjectCode     string           `json:"subjectCode,omitempty"`
	StartsAt        time.Time        `json:"startsAt"`
	EndsAt          time.Time        `json:"endsAt"`
	Phase           domain.Phase     `json:"phase"`
	Remaining       string           `json:"remaining,omitempty"`
	State           string           `json:"state"`
	Attended        string           `json:"attended"`
	AttendanceCount *int             `json:"attendanceCount,omitempty"`
}

func newSessionsCmd(loader *appLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"ls"},
		Short:   "List the attendance sessions visible to you and mark them as seen",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := app.registry.Refresh(ctx); err != nil {
				return fmt.Errorf("refresh sessions: %w", err)
			}

			if err := writeSessionsOutput(cmd, app, nil, asJSON); err != nil {
				return err
			}

			// the full list has been shown
			if err := app.tracker.Load(ctx); err != nil {
				return err
			}
			if _, err := app.feed.Acknowledge(ctx, domain.CategorySessions); err != nil {
				return fmt.Errorf("acknowledge sessions: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func currentViews(app *app) []application.SessionView {
	return application.BuildSessionViews(app.registry.Snapshot(), app.actor, app.now(), app.marking.State)
}

func writeSessionsOutput(cmd *cobra.Command, app *app, deltas []domain.Delta, asJSON bool) error {
	views := currentViews(app)

	if asJSON {
		out := make([]sessionOutput, 0, len(views))
		for _, view := range views {
			out = append(out, toSessionOutput(view, app.actor))
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rendered, err := app.renderDashboard(dashboard.Snapshot{
		Actor:  app.actor,
		Views:  views,
		Deltas: deltas,
	}, dashboard.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render sessions: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func toSessionOutput(view application.SessionView, actor domain.Actor) sessionOutput {
	session := view.Session
	out := sessionOutput{
		ID:          session.ID,
		Subject:     session.Subject.Name,
		SubjectCode: session.Subject.Code,
		StartsAt:    session.StartsAt,
		EndsAt:      session.EndsAt,
		Phase:       view.Phase,
		Remaining:   view.RemainingLabel,
		State:       string(view.State),
		Attended:    session.Attended.String(),
	}
	if actor.IsAdmin() {
		count := session.AttendanceCount
		out.AttendanceCount = &count
	}

	return out
}
