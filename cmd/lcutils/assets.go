package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) cmdAssets() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Earth Engine asset catalog operations",
	}

	cmd.AddCommand(c.cmdAssetsList())
	cmd.AddCommand(c.cmdAssetsCopyCollection())
	cmd.AddCommand(c.cmdAssetsRemove())

	return cmd
}

func (c *cli) cmdAssetsList() *cobra.Command {
	return &cobra.Command{
		Use:   "ls PROJECT [FOLDER]",
		Short: "List assets in a project or folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) == 2 {
				folder = args[1]
			}
			assets, err := c.app.AssetService(cmd.Context())
			if err != nil {
				return err
			}
			list, err := assets.ListAssets(cmd.Context(), args[0], folder)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
}

func (c *cli) cmdAssetsCopyCollection() *cobra.Command {
	return &cobra.Command{
		Use:   "copy-collection SRC_PROJECT SRC_COLLECTION DST_PROJECT DST_COLLECTION",
		Short: "Copy every asset of a collection, renaming to short names",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := c.app.AssetService(cmd.Context())
			if err != nil {
				return err
			}
			copied, err := assets.CopyCollection(cmd.Context(), args[0], args[1], args[2], args[3])
			if perr := printJSON(cmd.OutOrStdout(), copied); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
}

func (c *cli) cmdAssetsRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "rm PROJECT FOLDER",
		Short: "Delete every asset in a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := c.app.AssetService(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := assets.DeleteAssets(cmd.Context(), args[0], args[1])
			if perr := printJSON(cmd.OutOrStdout(), deleted); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
}
