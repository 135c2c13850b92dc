package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/saibuild/buildoutput"
	"github.com/dhamidi/saibuild/config"
	"github.com/dhamidi/saibuild/report"
)

const version = "0.2.0"

// globals holds the persistent flags and the configuration they select.
type globals struct {
	configPath string
	verbosity  int
	logFile    string

	cfg *config.Config
}

func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Log.Verbosity = g.verbosity
	}
	if cmd.Flags().Changed("log") {
		cfg.Log.File = g.logFile
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	g.cfg = cfg
	return nil
}

// output bundles the listener a command reports events to with the summary
// deciding its exit status.
type output struct {
	listener buildoutput.Listener
	summary  *report.Summary
}

func newOutput(format report.Format, showDetail bool) *output {
	summary := report.NewSummary()
	return &output{
		listener: report.Tee(format.Listener(os.Stdout, showDetail), summary),
		summary:  summary,
	}
}

// newRunOutput reports to stderr and leaves out plain output lines, which
// the program already printed itself.
func newRunOutput(format report.Format, showDetail bool) *output {
	summary := report.NewSummary()
	printer := format.Listener(os.Stderr, showDetail)
	return &output{
		listener: report.Tee(buildoutput.ListenerFunc(func(e buildoutput.Event) {
			if e.Kind != buildoutput.KindOutput {
				printer.OnEvent(e)
			}
		}), summary),
		summary: summary,
	}
}

// finish prints the summary and combines the run error with the
// reported errors.
func (o *output) finish(runErr error) error {
	if o.summary.Errors() > 0 || o.summary.Warnings() > 0 {
		fmt.Fprintln(os.Stderr, o.summary)
	}
	if err := o.summary.Err(); err != nil {
		return err
	}
	return runErr
}

func main() {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "sai",
		Short:         "A toasty java toolchain",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath, "configuration file")
	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", "log verbosity (repeat for more)")
	rootCmd.PersistentFlags().StringVar(&g.logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newCompileCmd(g))
	rootCmd.AddCommand(newRunCmd(g))
	rootCmd.AddCommand(newTestCmd(g))
	rootCmd.AddCommand(newProjectCmd(g))
	rootCmd.AddCommand(newLSPCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "sai:", err)
		os.Exit(1)
	}
}
