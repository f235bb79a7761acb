package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/haatos/pipeline-composer/internal/logging"
	"github.com/haatos/pipeline-composer/internal/settings"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFormat  string
	dotenvPath string
)

var rootCmd = &cobra.Command{
	Use:   "composer",
	Short: "Composer builds GitLab CI pipelines from reusable job collections",
	Long: `Composer renders GitLab CI configuration from definitions of jobs and
job collections. Collections can be mounted several times under different
names and stages, and needs between them are resolved to every instance.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.ReadDotenv(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		settings.Settings = settings.NewSettings()
		if !cmd.Flags().Changed("log-level") {
			logLevel = settings.Settings.LogLevel
		}
		if !cmd.Flags().Changed("log-format") {
			logFormat = settings.Settings.LogFormat
		}
		logging.Setup(logLevel, logFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json. Defaults to text on terminals.")
	rootCmd.PersistentFlags().StringVar(&dotenvPath, "env-file", internal.DotEnvPath, "Path to a .env file read before the environment.")

	rootCmd.AddCommand(renderCmd, validateCmd, serveCmd, versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
