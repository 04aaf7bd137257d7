package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/leadcalc/internal/config"
	"github.com/csheth/leadcalc/internal/prompt"
	"github.com/csheth/leadcalc/internal/submit"
	"github.com/csheth/leadcalc/internal/tui"
)

const envDebugLog = "LEADCALC_DEBUG"

type options struct {
	configPath  string
	endpoint    string
	mode        string
	timeout     time.Duration
	noAltScreen bool
	debugLog    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Println("leadcalc:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "leadcalc",
		Short: "Estimate a revenue-based financing offer from the terminal",
		Long: `leadcalc asks for a few figures about your company and shows the loan
amount, interest, and amortization the calculation service offers.

  leadcalc                      # figures update as you type
  leadcalc --mode standalone    # fill the form, then press Calculate
  leadcalc prompt               # question-by-question flow
  leadcalc config               # print the resolved configuration`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, closeLog, err := opts.prepare()
			if err != nil {
				return err
			}
			defer closeLog()
			return runTUI(settings, opts.noAltScreen)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $LEADCALC_CONFIG)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "calculation service base URL")
	flags.StringVar(&opts.mode, "mode", "", "inline or standalone")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout, eg. 10s")
	flags.StringVar(&opts.debugLog, "debug-log", "", "write debug logs to this file (default $LEADCALC_DEBUG)")
	root.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	root.AddCommand(newPromptCommand(opts), newConfigCommand(opts))
	return root
}

func newPromptCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Answer the standalone form one question at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, closeLog, err := opts.prepare()
			if err != nil {
				return err
			}
			defer closeLog()
			flow := prompt.Flow{
				Driver:   prompt.NewSurveyDriver(cmd.OutOrStdout()),
				Pipeline: newPipeline(settings),
			}
			_, err = flow.Run(cmd.Context())
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			return err
		},
	}
}

func newConfigCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.load()
			if err != nil {
				return err
			}
			out, err := settings.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (o *options) load() (config.Settings, error) {
	return config.Load(o.configPath, config.Overrides{
		Endpoint: o.endpoint,
		Mode:     o.mode,
		Timeout:  o.timeout,
	})
}

func (o *options) prepare() (config.Settings, func(), error) {
	settings, err := o.load()
	if err != nil {
		return config.Settings{}, nil, err
	}
	closeLog, err := setupLogging(o.debugLog)
	if err != nil {
		return config.Settings{}, nil, err
	}
	log.Printf("[config] endpoint=%q mode=%s timeout=%s", settings.Endpoint, settings.Mode, settings.Timeout)
	return settings, closeLog, nil
}

// setupLogging routes the standard logger to a file, or discards it so log
// lines never corrupt the rendered UI.
func setupLogging(path string) (func(), error) {
	if path == "" {
		path = os.Getenv(envDebugLog)
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "leadcalc")
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return func() { _ = f.Close() }, nil
}

func newPipeline(settings config.Settings) submit.Pipeline {
	return submit.Pipeline{
		Client:  submit.NewFromEnv(submit.Config{BaseURL: settings.Endpoint}),
		Timeout: settings.Timeout,
	}
}

func runTUI(settings config.Settings, noAltScreen bool) error {
	pipeline := newPipeline(settings)
	var programOpts []tea.ProgramOption
	if !noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Mode:    settings.Mode,
			Client:  pipeline.Client,
			Timeout: pipeline.Timeout,
		}),
		programOpts...,
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
