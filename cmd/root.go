package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/linkrot/internal/app"
	"github.com/JakeFAU/linkrot/internal/audit"
	"github.com/JakeFAU/linkrot/internal/config"
)

// Runner is the part of *app.App the command drives. Tests swap the factory
// to inject a fake.
type Runner interface {
	Run(ctx context.Context) (audit.Summary, error)
	Close(ctx context.Context) error
}

// newRunner is the application factory.
var newRunner = func(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (Runner, error) {
	return app.New(ctx, cfg, app.Options{Stdout: stdout, Stderr: stderr})
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "linkrot",
		Short: "Find dead links in your Pinboard bookmarks and repair them from the Internet Archive.",
		Long: `linkrot fetches every bookmark from a Pinboard account, checks each link with
four concurrent probes, and prints the share of dead links. For each dead link
it offers to replace the bookmark with the closest Internet Archive snapshot,
or to delete it when no snapshot exists. Without a terminal on stdin every
prompt is declined, so piped runs only report.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, err := newRunner(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("initialize linkrot: %w", err)
			}
			_, runErr := runner.Run(ctx)
			closeErr := runner.Close(context.Background())
			if runErr != nil {
				return runErr
			}
			return closeErr
		},
	}

	cmd.Flags().StringP("token", "t", "", "Pinboard API token in user:secret form (env LINKROT_STORE_TOKEN)")
	cmd.Flags().StringVar(&cfgFile, "config", "", "optional config file (yaml, json or toml)")

	return cmd
}

// Execute is the main entry point. It exits non-zero when the run could not
// start or complete.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "linkrot: %v\n", err)
		os.Exit(1)
	}
}
