package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/app"
)

// NewServeCommand runs the application with its HTTP surface until
// interrupted.
func NewServeCommand(global *globalOptions) *cobra.Command {
	var (
		milestones  bool
		cloudEvents bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Boot the application and serve the HTTP surface",
		Long: `Boot the application, activate the initial route and serve /state,
/milestones, /actions and /nav until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), global.logLevel)
			fs, err := app.FeedersFor(global.configFile)
			if err != nil {
				return err
			}

			opts := app.Options{
				Logger:            logger,
				Feeders:           fs,
				Serve:             true,
				ConsoleMilestones: milestones,
			}
			if cloudEvents {
				opts.CloudEventObservers = []initorder.ObserverFunc{jsonLinesObserver(cmd.OutOrStdout())}
			}

			a, err := app.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&milestones, "milestones", true, "Write every milestone to the log")
	cmd.Flags().BoolVar(&cloudEvents, "cloudevents", false, "Write every milestone to stdout as a CloudEvent JSON line")
	return cmd
}

// jsonLinesObserver writes each CloudEvent as one JSON document per line.
func jsonLinesObserver(w io.Writer) initorder.ObserverFunc {
	var mu sync.Mutex
	return func(_ context.Context, event cloudevents.Event) error {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encoding cloudevent: %w", err)
		}
		mu.Lock()
		defer mu.Unlock()
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}
