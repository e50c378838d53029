package cli

import (
	"github.com/spf13/cobra"
)

type checkResult struct {
	Candidate string `json:"candidate"`
	Usable    bool   `json:"usable"`
}

func newCheckCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "check <candidate>...",
		Short: "Report whether each candidate is a reachable remote URL",
		Long: "A candidate is usable when it parses as a URL with a scheme, a host and a path " +
			"and a live probe of the resource succeeds. Each candidate is probed once per run.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := s.service(cmd.Context())
			if err != nil {
				return err
			}

			results := make([]checkResult, len(args))
			for i, candidate := range args {
				results[i] = checkResult{Candidate: candidate, Usable: svc.Usable(cmd.Context(), candidate)}
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(out, results)
			}
			rows := make([][]string, len(results))
			for i, r := range results {
				status := "unusable"
				if r.Usable {
					status = "usable"
				}
				rows[i] = []string{r.Candidate, status}
			}
			PrintTable(out, []string{"candidate", "status"}, rows)
			return nil
		},
	}
}
