package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lcutils/internal/app"
	"lcutils/internal/config"
)

type cli struct {
	app *app.App
}

func main() {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "lcutils",
		Short:         "Signed URLs, object storage and asset catalog helpers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c.app = app.New(cfg, config.NewLogger(cfg.Log), nil)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}

	rootCmd.AddCommand(c.cmdSign())
	rootCmd.AddCommand(c.cmdList())
	rootCmd.AddCommand(c.cmdTIFs())
	rootCmd.AddCommand(c.cmdExists())
	rootCmd.AddCommand(c.cmdCopy())
	rootCmd.AddCommand(c.cmdMove())
	rootCmd.AddCommand(c.cmdRemove())
	rootCmd.AddCommand(c.cmdUpload())
	rootCmd.AddCommand(c.cmdDownload())
	rootCmd.AddCommand(c.cmdPublish())
	rootCmd.AddCommand(c.cmdAssets())
	rootCmd.AddCommand(c.cmdToken())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if c.app != nil {
			_ = c.app.Close()
		}
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
