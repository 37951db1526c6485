package main

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

var previewOut string

var previewCmd = &cobra.Command{
	Use:   "preview <left> <right>",
	Short: "Compose a scaled-down preview without setting the wallpaper",
	Args:  cobra.ExactArgs(2),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "preview.png", "where to write the preview image")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	assignments, err := a.assign(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	canvas, err := a.engine.ComposePreview(cmd.Context(), assignments)
	if err != nil {
		return err
	}
	if err := imaging.Save(canvas, previewOut); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	b := canvas.Bounds()
	fmt.Fprintf(cmd.ErrOrStderr(), "Preview %dx%d written to %s\n", b.Dx(), b.Dy(), previewOut)
	return nil
}
