package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/lab-matching/cmd/cli/commands"
	"github.com/jakechorley/lab-matching/internal/config"
	"github.com/jakechorley/lab-matching/pkg/utils/logging"
)

var (
	env        string
	configPath string
	logDir     string
	app        = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Lab matching CLI - assign students to laboratories",
		Long: `A CLI tool for assigning students to capacity-limited teachers from ranked preferences,
using deferred acceptance (DA), optimal assignment (MNK) or Hungarian enumeration (HNG).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment, used to name the log file")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (defaults to "+config.FileName+" in the current or home directory)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", logging.DefaultDir, "Directory for log files")

	rootCmd.AddCommand(commands.SolveCmd(app))
	rootCmd.AddCommand(commands.CompareCmd(app))
	rootCmd.AddCommand(commands.ValidateCmd(app))
	rootCmd.AddCommand(commands.DemoDataCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger and config
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env, logDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration", zap.String("path", configPath))
	app.Cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("default_method", app.Cfg.DefaultMethod),
		zap.String("output_dir", app.Cfg.OutputDir))

	return nil
}
