// Package assetctl implements the assetctl command line: offline planning
// runs, synthetic dataset generation and probing of a running server.
package assetctl

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/assetopt/pkg/logger"
)

// NewRootCommand builds the assetctl command tree.
func NewRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "assetctl",
		Short:         "Plan, generate and probe asset prioritization runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newOptimizeCommand(),
		newAssetsCommand(),
		newGenerateCommand(),
		newProbeCommand(),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
