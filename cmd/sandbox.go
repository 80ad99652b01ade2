package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/classence-cli/internal/adapters/portal/sandbox"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run an in-memory attendance portal for local testing",
	}

	cmd.AddCommand(newSandboxServeCmd())

	return cmd
}

func newSandboxServeCmd() *cobra.Command {
	var addr string
	var student string
	var admin string
	var legacy bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sandbox portal API under /api",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gin.SetMode(gin.ReleaseMode)

			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(logrus.InfoLevel)

			opts := []sandbox.Option{sandbox.WithLogger(logger)}
			if legacy {
				opts = append(opts, sandbox.WithLegacyErrors())
			}

			portal := sandbox.New(opts...)
			if err := portal.Seed(student, admin); err != nil {
				return fmt.Errorf("seed sandbox: %w", err)
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           portal.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sandbox portal on http://%s/api (student token %q, admin token %q)\n", addr, student, admin)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8088", "Listen address")
	cmd.Flags().StringVar(&student, "student", "student-1", "Seeded student id and token")
	cmd.Flags().StringVar(&admin, "admin", "admin-1", "Seeded admin id and token")
	cmd.Flags().BoolVar(&legacy, "legacy-errors", false, "Reply with free-text error messages")

	return cmd
}
