package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/util"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

// ErrNoSupportedDesktopEnvironment is returned when no configuration schema accepted the wallpaper.
var ErrNoSupportedDesktopEnvironment = errors.New("no supported desktop environment found")

// Installer sets an image file as the desktop background, spanned across all monitors.
type Installer interface {
	Install(ctx context.Context, imagePath string) error
}

// GSettingsInstaller sets the background through gsettings for GNOME-family desktops.
type GSettingsInstaller struct {
	runner  util.CommandRunner
	schemas []string
}

// NewGSettingsInstaller creates an installer trying each configured schema in turn.
func NewGSettingsInstaller(cfg *config.Config, runner util.CommandRunner) *GSettingsInstaller {
	schemas := cfg.BackgroundSchemas
	if len(schemas) == 0 {
		schemas = config.DefaultBackgroundSchemas
	}
	return &GSettingsInstaller{runner: runner, schemas: schemas}
}

// Install sets picture-uri and picture-options=spanned on every schema. It succeeds if at least one
// schema accepted both keys. Relative paths are resolved against the working directory.
func (g *GSettingsInstaller) Install(ctx context.Context, imagePath string) error {
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", imagePath, err)
	}
	uri := (&url.URL{Scheme: "file", Path: abs}).String()

	var errs []error
	anyOK := false
	for _, schema := range g.schemas {
		if err := g.set(ctx, schema, "picture-uri", uri); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := g.set(ctx, schema, "picture-options", "spanned"); err != nil {
			errs = append(errs, err)
			continue
		}
		log.Debugf("Install: %s accepted %s", schema, uri)
		anyOK = true
	}

	if anyOK {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNoSupportedDesktopEnvironment, errors.Join(errs...))
}

// set runs `gsettings set schema key value`.
func (g *GSettingsInstaller) set(ctx context.Context, schema, key, value string) error {
	if _, err := g.runner.Output(ctx, "gsettings", "set", schema, key, value); err != nil {
		var cmdErr *util.CommandError
		if errors.As(err, &cmdErr) {
			return fmt.Errorf("gsettings set %s %s failed: %s", schema, key, cmdErr.Stderr)
		}
		return fmt.Errorf("failed to run gsettings: %w", err)
	}
	return nil
}
