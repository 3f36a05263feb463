package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/initorder/app"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/store"
	"github.com/GoCodeAlone/initorder/modules/views"
)

// demoStep is one scripted user interaction.
type demoStep struct {
	label string
	run   func(ctx context.Context, a *app.App) error
}

func navigate(path string) demoStep {
	return demoStep{
		label: "navigate " + path,
		run: func(ctx context.Context, a *app.App) error {
			_, err := a.Router().Navigate(ctx, path)
			return err
		},
	}
}

func triggerRouteAction() demoStep {
	return demoStep{
		label: "trigger route action",
		run: func(ctx context.Context, a *app.App) error {
			current := a.Router().Current()
			if current == nil {
				return nil
			}
			if v, ok := current.View().(views.Actionable); ok {
				v.TriggerAction(ctx)
			}
			return nil
		},
	}
}

// defaultScript walks every route, revisits the user route and exercises
// both user commands.
func defaultScript() []demoStep {
	return []demoStep{
		{label: "trigger init", run: func(ctx context.Context, a *app.App) error {
			a.Store().Dispatch(ctx, store.InitApp{Timestamp: time.Now().UTC().Format(time.RFC3339Nano)})
			return nil
		}},
		{label: "trigger load", run: func(ctx context.Context, a *app.App) error {
			a.Store().Dispatch(ctx, store.LoadData{})
			return nil
		}},
		navigate("/user"),
		triggerRouteAction(),
		navigate("/product"),
		triggerRouteAction(),
		navigate("/user"),
		{label: "back", run: func(ctx context.Context, a *app.App) error {
			_, err := a.Router().Back(ctx)
			return err
		}},
	}
}

// NewDemoCommand boots the application, runs a scripted walk through the
// routes and prints the milestone timeline.
func NewDemoCommand(global *globalOptions) *cobra.Command {
	var (
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted session and print the milestone timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), global.logLevel)
			fs, err := app.FeedersFor(global.configFile)
			if err != nil {
				return err
			}
			a, err := app.New(app.Options{Logger: logger, Feeders: fs})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := runDemo(ctx, a, defaultScript()); err != nil {
				return err
			}

			if asJSON {
				return writeTimelineJSON(cmd.OutOrStdout(), a.History().Events())
			}
			return writeTimeline(cmd.OutOrStdout(), a.History().Events())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the timeline as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up if the session takes longer")
	return cmd
}

// runDemo boots a, runs the script, waits for the loaded data to land in
// the state and shuts a down.
func runDemo(ctx context.Context, a *app.App, script []demoStep) (err error) {
	if err := a.Boot(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := a.Shutdown(); err == nil {
			err = stopErr
		}
	}()

	loaded := make(chan struct{})
	var closed bool
	sub := a.Store().Select(func(s store.AppState) {
		if s.Data != nil && !closed {
			closed = true
			close(loaded)
		}
	})
	defer sub.Cancel()

	for _, step := range script {
		if err := step.run(ctx, a); err != nil {
			return fmt.Errorf("%s: %w", step.label, err)
		}
	}

	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for data: %w", ctx.Err())
	}
}

func writeTimeline(w io.Writer, events []*lifecycle.Event) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSOURCE\tTYPE\tMESSAGE")
	for _, event := range events {
		msg := event.Message
		if event.Status != "" {
			msg = fmt.Sprintf("%s (%s)", msg, event.Status)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", event.Seq, event.Source, event.Type, strings.TrimSpace(msg))
	}
	return tw.Flush()
}

func writeTimelineJSON(w io.Writer, events []*lifecycle.Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}
