package cli

import (
	"github.com/spf13/cobra"

	"esmcat/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	var deps bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			var entries []buildinfo.Entry
			if deps {
				entries = buildinfo.Collect(buildinfo.Read(), buildinfo.DefaultDependencies)
			}

			if getOutputFormat(cmd) == "json" {
				v := map[string]any{
					"version": version,
					"commit":  commit,
				}
				if deps {
					v["dependencies"] = entries
				}
				return PrintJSON(out, v)
			}
			writeLine(out, "esmcat version %s (commit: %s)", version, commit)
			if deps {
				return buildinfo.Report(out, entries)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deps, "deps", false, "Also report the versions of linked dependencies")

	return cmd
}
