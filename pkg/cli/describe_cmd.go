package cli

import (
	"github.com/spf13/cobra"
)

func newDescribeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <descriptor>",
		Short: "Print the fields of a catalog descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := s.service(cmd.Context())
			if err != nil {
				return err
			}
			d, ref, err := svc.LoadDescriptor(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(out, map[string]any{
					"reference": ref,
					"fields":    d.Fields,
				})
			}
			writeLine(out, "Reference: %s", ref)
			writeLine(out, "")
			PrintDetail(out, d.Fields)
			return nil
		},
	}
}
