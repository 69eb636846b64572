package cmd

import (
	"os"

	"dbbrowser/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// configPath is set by the --config flag
var configPath string

// rootCmd starts the browser when called without a subcommand
var rootCmd = &cobra.Command{
	Use:          "dbbrowser",
	Short:        "Browse and edit SQLite databases",
	Version:      version,
	SilenceUsage: true,
	RunE:         runBrowser,
}

func init() {
	// A missing .env is normal
	_ = godotenv.Load()

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")

	rootCmd.AddCommand(newSettingsCmd(openSettings))
}

// Execute runs the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBrowser(cmd *cobra.Command, _ []string) error {
	env, err := setup(true)
	if err != nil {
		return err
	}
	defer env.Close()

	env.logger.Info("Starting DB Browser v%s", version)

	app := ui.NewApp(env.fyneApp, env.config, env.configPath, env.settings, env.logger)
	defer app.Cleanup()

	env.logger.Info("Application started")
	app.Run()
	env.logger.Info("Application stopped")
	return nil
}
