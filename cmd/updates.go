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

type updateOutput struct {
	ID        domain.UpdateID `json:"id"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	AudioURL  string          `json:"audioUrl,omitempty"`
	Author    string          `json:"author,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newUpdatesCmd(loader *appLoader) *cobra.Command {
	var search string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "updates",
		Short: "Show posted updates and mark them as seen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			updates, err := app.feed.ViewUpdates(cmd.Context())
			if err != nil {
				return err
			}
			updates = application.FilterUpdates(updates, search)

			if asJSON {
				out := make([]updateOutput, 0, len(updates))
				for _, update := range updates {
					out = append(out, updateOutput(update))
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			rendered, err := app.renderUpdates(updates, dashboard.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render updates: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only show updates whose title or body contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
