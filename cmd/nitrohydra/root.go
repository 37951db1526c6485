package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/pkg/wallpaper"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

var (
	version = "0.1.0"
	verbose bool
	cfgFile string
)

// errNeedTwoMonitors is returned when fewer than two monitors are connected.
var errNeedTwoMonitors = errors.New("need at least 2 monitors")

var rootCmd = &cobra.Command{
	Use:   "nitrohydra [<left> <right>]",
	Short: "Multi-monitor wallpaper composer",
	Long: `nitrohydra joins one image per monitor into a single wallpaper spanning
the whole desktop and installs it through gsettings.

Images are assigned to monitors left-to-right.`,
	Version:           version,
	Args:              pairOrNothing,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runApply,
}

// Execute runs the command line with ctx as the base context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	if config.AppVersion != "" {
		version = config.AppVersion
		rootCmd.Version = version
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the user config directory)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"%s %s (%s/%s, %s)\n",
		config.AppName, version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func setup(*cobra.Command, []string) error {
	log.SetVerbose(verbose)
	return nil
}

// pairOrNothing accepts either no arguments or exactly one image per side.
func pairOrNothing(_ *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("expected <left> <right>, got %d arguments", len(args))
	}
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	assignments, err := a.assign(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	progress := func(msg string) { fmt.Fprintln(stderr, msg) }
	if err := a.engine.Apply(cmd.Context(), assignments, wallpaper.ProgressFunc(progress)); err != nil {
		return err
	}
	fmt.Fprintln(stderr, "Wallpaper applied!")
	return nil
}
