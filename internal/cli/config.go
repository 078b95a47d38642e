package cli

import (
	"github.com/spf13/cobra"

	"bop/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "Create, inspect and validate bop.toml.",
	}

	cmd.AddCommand(newConfigInitCmd(app))
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigPathCmd(app))
	cmd.AddCommand(newConfigValidateCmd(app))

	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a commented configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			path, err := config.WriteTemplate(app.ConfigDir)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Success("Created %s", path)
			return nil
		},
	}
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the configuration after defaults, bop.toml and BOP_* environment overrides are applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := app.Config

			if output.IsJSON() {
				return output.JSON(cfg)
			}

			output.Bold("[pricing]")
			output.Printf("  max_steps    %d\n", cfg.Pricing.MaxSteps)
			output.Printf("  policy       %s\n", cfg.Pricing.Policy)
			output.Printf("  engine       %s\n", cfg.Pricing.Engine)
			output.Printf("  precision    %d\n", cfg.Pricing.Precision)
			output.Println()
			output.Bold("[logging]")
			output.Printf("  level        %s\n", cfg.Logging.Level)
			output.Printf("  file         %t\n", cfg.Logging.File)
			output.Printf("  file_path    %s\n", cfg.Logging.FilePath)
			output.Printf("  max_size     %d\n", cfg.Logging.MaxSize)
			output.Printf("  max_backups  %d\n", cfg.Logging.MaxBackups)
			output.Printf("  max_age      %d\n", cfg.Logging.MaxAge)
			output.Println()
			output.Bold("[journal]")
			output.Printf("  enabled      %t\n", cfg.Journal.Enabled)
			output.Printf("  path         %s\n", cfg.Journal.Path)
			output.Println()
			output.Bold("[batch]")
			output.Printf("  workers      %d\n", cfg.Batch.Workers)
			return nil
		},
	}
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			NewOutput(cmd).Println(config.ConfigPath(app.ConfigDir))
		},
	}
}

func newConfigValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if _, err := config.Load(app.ConfigDir); err != nil {
				return err
			}
			output.Success("Configuration is valid: %s", config.ConfigPath(app.ConfigDir))
			return nil
		},
	}
}
