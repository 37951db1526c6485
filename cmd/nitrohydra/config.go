package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/nitrohydra/config"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the current settings",
	Long: `Writes the effective settings (defaults merged with any existing file) to the
config file, so every key is listed and can be edited.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		filename, err := configFilename()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), filename)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configFilename returns --config, or the default config file location.
func configFilename() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.GetFilename()
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	filename, err := configFilename()
	if err != nil {
		return err
	}

	_, statErr := os.Stat(filename)
	exists := statErr == nil
	if exists && !forceInit {
		return fmt.Errorf("%s already exists, use --force to rewrite it", filename)
	}
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	cfg := config.Default()
	if exists {
		if cfg, err = config.Load(filename); err != nil {
			return err
		}
	}
	if err := cfg.Save(filename); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Config written to %s\n", filename)
	return nil
}
