package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errAdminCannotMark = errors.New("admins cannot mark attendance")

func newMarkCmd(loader *appLoader) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "mark <session-id>",
		Short: "Mark your attendance for an open session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			if app.actor.IsAdmin() {
				return errAdminCannotMark
			}

			if _, err := app.registry.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refresh sessions: %w", err)
			}

			id := domain.SessionID(args[0])
			submit := func(ctx context.Context) (application.MarkOutcome, error) {
				return app.marking.Mark(ctx, id)
			}

			var outcome application.MarkOutcome
			if quiet {
				outcome, err = submit(cmd.Context())
			} else {
				session, getErr := app.registry.Get(id)
				if getErr != nil {
					return getErr
				}
				outcome, err = runMarkSpinner(cmd.Context(), cmd.ErrOrStderr(), session, submit)
			}

			return reportMarkOutcome(cmd, outcome, err)
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not show a progress spinner")

	return cmd
}

func reportMarkOutcome(cmd *cobra.Command, outcome application.MarkOutcome, err error) error {
	if outcome.Message == "" {
		return err
	}

	if _, writeErr := fmt.Fprintln(cmd.OutOrStdout(), outcome.Message); writeErr != nil {
		return writeErr
	}

	switch outcome.Signal {
	case application.SignalSuccess, application.SignalInfo:
		return nil
	default:
		return err
	}
}
