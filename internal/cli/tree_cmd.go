package cli

import (
	"github.com/spf13/cobra"

	"github.com/benedict2310/siteindex/internal/output"
	"github.com/benedict2310/siteindex/internal/release"
)

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var flags siteFlags
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "tree [dir]",
		Short: "Print the folder and page tree that generate would render",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			s, err := loadSite(cmd, opts, args, &flags)
			if err != nil {
				return err
			}
			root, err := release.Scan(s.cfg.ReleaseConfig(s.root))
			if err != nil {
				return classify(err)
			}
			return output.WriteTree(cmd.OutOrStdout(), format, root)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, or yaml")

	return cmd
}
