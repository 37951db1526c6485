package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/nitrohydra/pkg/wallpaper"
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List connected monitors left-to-right",
	Args:  cobra.NoArgs,
	RunE:  runMonitors,
}

func init() {
	rootCmd.AddCommand(monitorsCmd)
}

func runMonitors(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	monitors, err := a.detector.Detect(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	paths := make([]string, len(monitors))
	for i, m := range monitors {
		fmt.Fprintf(out, "%d  %s\n", i+1, m)
	}
	if len(monitors) > 0 {
		size := wallpaper.CanvasSize(wallpaper.Assign(paths, monitors))
		fmt.Fprintf(out, "canvas %dx%d\n", size.X, size.Y)
	}
	return nil
}
