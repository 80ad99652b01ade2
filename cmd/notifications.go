package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newNotificationsCmd(loader *appLoader) *cobra.Command {
	var ack string
	var reset bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Show unseen update and session counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if reset {
				if err := app.tracker.Reset(ctx); err != nil {
					return fmt.Errorf("reset checkpoints: %w", err)
				}
			} else if err := app.tracker.Load(ctx); err != nil {
				return err
			}

			if _, err := app.feed.RefreshUpdates(ctx); err != nil {
				return err
			}
			if _, err := app.feed.RefreshSessions(ctx); err != nil {
				return err
			}

			if ack != "" {
				category, err := domain.ParseCategory(ack)
				if err != nil {
					return err
				}
				if _, err := app.feed.Acknowledge(ctx, category); err != nil {
					return fmt.Errorf("acknowledge %s: %w", category, err)
				}
			}

			deltas := app.feed.Deltas()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(deltas)
			}

			for _, delta := range deltas {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d new (of %d)\n", delta.Category, delta.Unseen, delta.Total); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&ack, "ack", "", "Acknowledge a category (updates or sessions)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Forget every acknowledgment before counting")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
