package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lcutils/internal/csvexport"
)

// splitURI accepts either "gs://bucket/key" / "s3://bucket/key" or a bucket
// and key as separate arguments.
func splitURI(args []string) (bucket, key string, err error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	rest, ok := strings.CutPrefix(args[0], "gs://")
	if !ok {
		rest, ok = strings.CutPrefix(args[0], "s3://")
	}
	if !ok {
		return "", "", fmt.Errorf("expected gs://bucket/key or BUCKET KEY, got %q", args[0])
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %q", args[0])
	}
	return bucket, key, nil
}

func (c *cli) cmdList() *cobra.Command {
	var (
		long  bool
		asCSV bool
	)

	cmd := &cobra.Command{
		Use:   "ls BUCKET [PREFIX]",
		Short: "List object names under a prefix",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 2 {
				prefix = args[1]
			}
			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}

			if asCSV {
				infos, err := blobs.List(cmd.Context(), args[0], prefix)
				if err != nil {
					return err
				}
				w := csvexport.NewWriter(cmd.OutOrStdout())
				if err := w.WriteHeader(); err != nil {
					return err
				}
				if err := w.WriteBlobs(infos); err != nil {
					return err
				}
				w.Flush()
				return w.Error()
			}

			if long {
				infos, err := blobs.List(cmd.Context(), args[0], prefix)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), infos)
			}

			names, err := blobs.ListNames(cmd.Context(), args[0], prefix)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Print size, content type and update time as JSON")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Print the listing as CSV")
	cmd.MarkFlagsMutuallyExclusive("long", "csv")
	return cmd
}

func (c *cli) cmdTIFs() *cobra.Command {
	return &cobra.Command{
		Use:   "tifs BUCKET [PREFIX]",
		Short: "Print .tif URIs grouped by year",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 2 {
				prefix = args[1]
			}
			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			byYear, err := blobs.ListTIFURIsByYear(cmd.Context(), args[0], prefix)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), byYear)
		},
	}
}

func (c *cli) cmdExists() *cobra.Command {
	return &cobra.Command{
		Use:   "exists URI | BUCKET KEY",
		Short: "Exit 0 if the object exists, 2 otherwise",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, key, err := splitURI(args)
			if err != nil {
				return err
			}
			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := blobs.Exists(cmd.Context(), bucket, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			if !ok {
				_ = c.app.Close()
				os.Exit(2)
			}
			return nil
		},
	}
}

func (c *cli) cmdCopy() *cobra.Command {
	return &cobra.Command{
		Use:   "cp SRC_URI DST_URI",
		Short: "Copy an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sb, sk, db, dk, err := splitPair(args)
			if err != nil {
				return err
			}
			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			return blobs.Copy(cmd.Context(), sb, sk, db, dk)
		},
	}
}

func (c *cli) cmdMove() *cobra.Command {
	return &cobra.Command{
		Use:   "mv SRC_URI DST_URI",
		Short: "Move an object (copy, then delete the source)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sb, sk, db, dk, err := splitPair(args)
			if err != nil {
				return err
			}
			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			return blobs.Move(cmd.Context(), sb, sk, db, dk)
		},
	}
}

func splitPair(args []string) (srcBucket, srcKey, dstBucket, dstKey string, err error) {
	srcBucket, srcKey, err = splitURI(args[:1])
	if err != nil {
		return
	}
	dstBucket, dstKey, err = splitURI(args[1:])
	return
}

func (c *cli) cmdRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "rm URI | BUCKET KEY",
		Short: "Delete an object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, key, err := splitURI(args)
			if err != nil {
				return err
			}
			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			return blobs.Delete(cmd.Context(), bucket, key)
		},
	}
}

func (c *cli) cmdUpload() *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload LOCAL_PATH DST_URI",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, key, err := splitURI(args[1:])
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := f.Stat()
			if err != nil {
				return err
			}
			if key == "" || strings.HasSuffix(key, "/") {
				key += filepath.Base(args[0])
			}
			if contentType == "" {
				contentType = mime.TypeByExtension(filepath.Ext(args[0]))
			}

			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			out, err := blobs.Upload(cmd.Context(), bucket, key, f, st.Size(), contentType)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type (guessed from the extension when empty)")
	return cmd
}

func (c *cli) cmdDownload() *cobra.Command {
	return &cobra.Command{
		Use:   "download SRC_URI [LOCAL_PATH]",
		Short: "Download an object to a local file, or to stdout when LOCAL_PATH is -",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, key, err := splitURI(args[:1])
			if err != nil {
				return err
			}
			dst := filepath.Base(key)
			if len(args) == 2 {
				dst = args[1]
			}

			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			if dst != "-" {
				return blobs.Download(cmd.Context(), bucket, key, dst)
			}

			f, err := blobs.DownloadTemp(cmd.Context(), bucket, key)
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
				_ = os.Remove(f.Name())
			}()
			_, err = io.Copy(cmd.OutOrStdout(), f)
			return err
		},
	}
}

func (c *cli) cmdPublish() *cobra.Command {
	return &cobra.Command{
		Use:   "publish URI | BUCKET KEY",
		Short: "Make an object publicly readable and print its URL",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, key, err := splitURI(args)
			if err != nil {
				return err
			}
			blobs, err := c.app.BlobService(cmd.Context())
			if err != nil {
				return err
			}
			url, err := blobs.MakePublic(cmd.Context(), bucket, key)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), url)
			return err
		},
	}
}
