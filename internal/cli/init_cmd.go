package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benedict2310/siteindex/internal/config"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	var flags siteFlags

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a .siteindex.yaml with every default spelled out",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath(dir)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat config file %s: %w", path, err)
			}

			cfg := config.Default()
			flags.overrides(cmd).Apply(&cfg)
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			abs, _ := filepath.Abs(path)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", abs)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
