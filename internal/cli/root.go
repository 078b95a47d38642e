package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bop/internal/config"
	"bop/internal/lattice"
	"bop/internal/logging"
	"bop/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-19"
)

const (
	annotationUsage      = "usage"
	annotationSkipConfig = "skip-config"
)

// App holds the application dependencies. They are filled in by the root
// command's pre-run hook once flags are parsed.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Pricer    *lattice.Pricer

	journal store.Journal
}

// NewApp returns an App with default configuration, used until flags are parsed.
func NewApp() *App {
	app := &App{
		Config: config.Default(),
		Logger: logging.NewLogger(),
	}
	app.Pricer = app.Config.Pricer(&app.Logger)
	return app
}

func (a *App) load(cmd *cobra.Command) error {
	a.ConfigDir, _ = cmd.Flags().GetString("config")
	if a.ConfigDir == "" {
		a.ConfigDir = config.DefaultConfigDir()
	}

	if cmd.Annotations[annotationSkipConfig] != "true" {
		cfg, err := config.Load(a.ConfigDir)
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	a.Logger = logging.NewLoggerWithConfig(a.Config.LogConfig())
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}
	a.Logger = logging.WithCommand(a.Logger, cmd.Name())
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.Logger))

	a.Pricer = a.Config.Pricer(&a.Logger)
	return nil
}

// Journal opens the quote journal on first use.
func (a *App) Journal() (store.Journal, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	j, err := store.NewSQLiteStore(a.Config.Journal.Path)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", a.Config.Journal.Path).Msg("Quote journal opened")
	a.journal = j
	return j, nil
}

// Close releases the journal if it was opened.
func (a *App) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close journal")
		}
		a.journal = nil
	}
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := NewApp()

	rootCmd := &cobra.Command{
		Use:   "bop",
		Short: "Binomial option pricer",
		Long: `bop prices European and American vanilla options in the Cox-Ross-Rubinstein
binomial model by backward induction over a binary price tree.

The six model parameters are positional: T S0 u d K r. Put "--" before them
when the rate is negative, e.g. 'bop price -- 3 100 1.1 0.9 100 -0.01'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/bop)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(NewProgramCmd(Papo, func() *lattice.Pricer { return app.Pricer }))
	rootCmd.AddCommand(NewProgramCmd(Peco, func() *lattice.Pricer { return app.Pricer }))
	rootCmd.AddCommand(newBatchCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newExamplesCmd())
	rootCmd.AddCommand(newModelCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("bop v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

// Execute runs cmd and returns the process exit code. A wrong argument
// count prints the command's usage text on stderr; any other failure prints
// the error.
func Execute(cmd *cobra.Command) int {
	executed, err := cmd.ExecuteC()
	if err == nil {
		return 0
	}
	if executed == nil {
		executed = cmd
	}

	stderr := cmd.ErrOrStderr()
	if errors.Is(err, errUsage) {
		usage := executed.Annotations[annotationUsage]
		if usage == "" {
			usage = executed.UsageString()
		}
		fmt.Fprint(stderr, usage)
		return 1
	}

	fmt.Fprintf(stderr, "%s: %v\n", executed.Name(), err)
	return 1
}
