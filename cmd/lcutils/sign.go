package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lcutils/internal/port"
)

func (c *cli) cmdSign() *cobra.Command {
	var (
		method      string
		expiration  int64
		subresource string
		headers     []string
		params      []string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "sign BUCKET OBJECT",
		Short: "Print a signed URL for an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdrs, err := parsePairs(headers, ":")
			if err != nil {
				return fmt.Errorf("--header: %w", err)
			}
			qp, err := parsePairs(params, "=")
			if err != nil {
				return fmt.Errorf("--param: %w", err)
			}

			signer, err := c.app.URLSigner(cmd.Context())
			if err != nil {
				return err
			}
			out, err := signer.SignedURL(cmd.Context(), port.SignedURLInput{
				Bucket:            args[0],
				Key:               args[1],
				Method:            method,
				ExpirationSeconds: expiration,
				Subresource:       subresource,
				QueryParameters:   qp,
				Headers:           hdrs,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.URL)
			return err
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method the URL grants")
	cmd.Flags().Int64VarP(&expiration, "expiration", "e", 0, "Lifetime in seconds (0 uses the configured default, max 604800)")
	cmd.Flags().StringVar(&subresource, "subresource", "", "Valueless query parameter to sign, e.g. uploads")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Header to sign, as 'Name: value' (repeatable)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Query parameter to sign, as key=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print URL, method and expiry as JSON")

	return cmd
}

// parsePairs splits each entry on the first sep into a map.
func parsePairs(entries []string, sep string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, sep)
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("malformed entry %q", e)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
