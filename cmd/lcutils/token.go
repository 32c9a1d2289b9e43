package main

import (
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) cmdToken() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token SUBJECT",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := c.app.AuthService().IssueToken(args[0], ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tok)
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (0 uses the configured expiry)")
	return cmd
}
