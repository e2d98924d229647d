package assetctl

import (
	"github.com/spf13/cobra"
)

func newAssetsCommand() *cobra.Command {
	var p planFlags
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Print the shaped asset list and KPIs as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := p.service(cmd)
			if err != nil {
				return err
			}
			resp, err := svc.Assets(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	p.register(cmd)
	return cmd
}
