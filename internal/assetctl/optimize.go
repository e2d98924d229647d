package assetctl

import (
	"github.com/spf13/cobra"
)

func newOptimizeCommand() *cobra.Command {
	var p planFlags
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run one optimization offline and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := p.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Optimize(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	p.register(cmd)
	return cmd
}
