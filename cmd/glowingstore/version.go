package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newVersionCmd(log *logrus.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and the configured API versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(cmd.ErrOrStderr())

			cfg, err := loadConfig(log, configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			printVersion(cmd.OutOrStdout(), versioning.NewSource(cfg.Declarations()...))

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (defaults when empty)")

	return cmd
}

func printVersion(w io.Writer, src *versioning.Source) {
	groups := make([]string, 0, 2)

	for _, d := range src.ListVersions() {
		name := d.GroupName
		if d.Deprecated {
			name += " (deprecated)"
		}

		groups = append(groups, name)
	}

	fmt.Fprintf(w, "glowingstore %s\n", Version)
	fmt.Fprintf(w, "  Git commit:   %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date:   %s\n", BuildDate)
	fmt.Fprintf(w, "  API versions: %s\n", strings.Join(groups, ", "))
}
