package cli

import "github.com/spf13/cobra"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the siteindex root command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "siteindex",
		Short: "Regenerate the index, sitemaps and robots.txt of a static HTML site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default <dir>/.siteindex.yaml, or $SITEINDEX_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newTreeCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}
