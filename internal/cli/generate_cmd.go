package cli

import (
	"github.com/spf13/cobra"

	"github.com/benedict2310/siteindex/internal/output"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var flags siteFlags
	var dryRun bool
	var noGit bool
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Regenerate the index page, sitemaps and robots.txt",
		Long: "Scan the HTML pages below dir (default: the working directory) and rewrite the index page,\n" +
			"the sitemap or per-folder sitemaps with their sitemap index, robots.txt and, when enabled,\n" +
			"the recently changed page and per-folder index pages.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			s, err := loadSite(cmd, opts, args, &flags)
			if err != nil {
				return err
			}
			res, err := s.generate(cmd.Context(), dryRun, !noGit)
			if err != nil {
				return err
			}
			return output.WriteGenerateReport(cmd.OutOrStdout(), format, res)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render every output without writing")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "Skip the version-control query; the changed list stays empty")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Report format: table, json, or yaml")

	return cmd
}
