package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/N1K0232/GlowingStoreApi/pkg/metrics"
	"github.com/N1K0232/GlowingStoreApi/pkg/openapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newOpenAPICmd(log *logrus.Logger) *cobra.Command {
	var (
		configPath string
		format     string
		output     string
		list       bool
	)

	cmd := &cobra.Command{
		Use:   "openapi [group]",
		Short: "Print the OpenAPI document of an API version",
		Long: `Build the OpenAPI documents exactly as the server does and print the one
for the given group (for example v1) as JSON or YAML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keep stdout clean for the document.
			log.SetOutput(os.Stderr)

			cfg, err := loadConfig(log, configPath)
			if err != nil {
				return err
			}

			srv, err := newAPIServer(cmd.Context(), log, cfg, metrics.NewWithRegisterer(prometheus.NewRegistry()))
			if err != nil {
				return err
			}

			defer srv.Stop()

			reg := srv.Registry()

			if list || len(args) == 0 {
				return printGroups(cmd.OutOrStdout(), reg.Groups())
			}

			doc, err := reg.Get(args[0])
			if err != nil {
				return err
			}

			var data []byte

			switch strings.ToLower(format) {
			case "json":
				data, err = doc.MarshalJSON()
			case "yaml", "yml":
				data, err = doc.YAML()
			default:
				return fmt.Errorf("unsupported format %q (json, yaml)", format)
			}

			if err != nil {
				return err
			}

			if !strings.HasSuffix(string(data), "\n") {
				data = append(data, '\n')
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)

				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil { //nolint:gosec // Documents are public.
				return fmt.Errorf("writing %s: %w", output, err)
			}

			log.WithField("path", output).Info("OpenAPI document written")

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to configuration file (built-in defaults when empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().BoolVar(&list, "list", false, "List the available groups")

	return cmd
}

func printGroups(w io.Writer, groups []openapi.Group) error {
	for _, g := range groups {
		line := g.Name
		if g.Deprecated {
			line += " (deprecated)"
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
