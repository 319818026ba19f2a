package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// errDegraded makes `sk health --strict` exit non-zero while storage is down
var errDegraded = errors.New("server is degraded: store unreachable")

func newHealthCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server and storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := client.Get(cmd.Context(), apiPath("health"), &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			if strict && !result.StoreConnected {
				return errDegraded
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the server reports degraded storage")

	return cmd
}
