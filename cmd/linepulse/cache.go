package main

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the file cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired file cache entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := c.service(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			before := dirSize(c.cfg.CacheDir)
			removed, err := svc.PruneCache(ctx)
			if err != nil {
				return err
			}
			freed := before - dirSize(c.cfg.CacheDir)
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %s expired entries, freed %s\n",
				humanize.Comma(int64(removed)), humanize.Bytes(uint64(max(0, freed))))
			return nil
		},
	})
	return cmd
}

// dirSize sums regular file sizes below dir. Unreadable entries count as zero.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr // best effort
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
