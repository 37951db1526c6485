package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/nitrohydra/pkg/gallery"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Build thumbnails for a directory and list its images, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	g := gallery.New(a.cache, gallery.OptionsFromConfig(a.cfg))
	defer g.Close()
	g.Load(args[0])

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for g.IsLoading() {
		g.Poll()
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-ticker.C:
		}
	}
	g.Poll()

	if g.State() == gallery.StateError {
		return g.Err()
	}

	out := cmd.OutOrStdout()
	entries := g.Entries()
	for i, e := range entries {
		fmt.Fprintf(out, "%3d  %5dx%-5d  %s  %s\n", i, e.OriginalSize.X, e.OriginalSize.Y,
			e.Modified.Format(time.DateTime), e.Name)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d images, thumbnails in %s\n", len(entries), a.cache.Dir())
	return nil
}
