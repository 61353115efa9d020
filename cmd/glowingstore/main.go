package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Build info (set via ldflags).
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// Global flags.
	logLevel  string
	logFormat string
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	rootCmd := &cobra.Command{
		Use:   "glowingstore",
		Short: "GlowingStore web API",
		Long: `glowingstore hosts the GlowingStore web API.

Every declared API version is served under /api/v{version} and documented by
its own OpenAPI document, browsable through the Swagger UI.

  server    serve the API, its documents and the Swagger UI
  openapi   print the document of one API version as JSON or YAML, or list
            the documented versions with --list
  version   print build information and the configured API versions`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)

			switch logFormat {
			case "json":
				log.SetFormatter(&logrus.JSONFormatter{})
			default:
				log.SetFormatter(&logrus.TextFormatter{
					FullTimestamp: true,
				})
			}

			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	rootCmd.AddCommand(
		newServerCmd(log),
		newOpenAPICmd(log),
		newVersionCmd(log),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
