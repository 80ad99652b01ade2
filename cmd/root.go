package cmd

import (
	"github.com/bnema/classence-cli/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	loader := &appLoader{v: v}

	rootCmd := &cobra.Command{
		Use:           "classence",
		Short:         "Classence attendance client: sessions, marking and notifications",
		Long:          "classence lists the attendance sessions open to you, marks attendance within the session window, and tracks unseen updates and sessions against your last acknowledgment.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return loader.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("base-url", "", "Portal API base URL")
	flags.String("actor", "", "Actor id the client acts as")
	flags.String("role", "", "Actor role (student or admin)")

	for key, flag := range map[string]string{
		config.KeyLogLevel:      "log-level",
		config.KeyPortalBaseURL: "base-url",
		config.KeyActorID:       "actor",
		config.KeyActorRole:     "role",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSessionsCmd(loader),
		newMarkCmd(loader),
		newNotificationsCmd(loader),
		newUpdatesCmd(loader),
		newWatchCmd(loader),
		newSandboxCmd(),
	)

	return rootCmd
}
