package main

import (
	"context"
	"fmt"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/pkg/monitor"
	"github.com/dixieflatline76/nitrohydra/pkg/thumbcache"
	"github.com/dixieflatline76/nitrohydra/pkg/wallpaper"
	"github.com/dixieflatline76/nitrohydra/util"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

// app bundles the components every subcommand is built from.
type app struct {
	cfg      *config.Config
	cache    *thumbcache.Cache
	detector *monitor.Detector
	engine   *wallpaper.Engine
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cacheDir, err := cfg.GetCacheDir()
	if err != nil {
		return nil, err
	}

	runner := util.ExecRunner{}
	cache := thumbcache.New(cacheDir)
	engine, err := wallpaper.NewEngine(cfg, cacheDir, cache, wallpaper.NewGSettingsInstaller(cfg, runner))
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		cache:    cache,
		detector: monitor.NewDetector(cfg, runner),
		engine:   engine,
	}, nil
}

// loadConfig reads --config, or the default config file when the flag is unset.
// A broken default file is logged and replaced by the defaults; a broken --config file is an error.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	filename, err := config.GetFilename()
	if err != nil {
		log.Printf("Config: %v, using defaults", err)
		return config.Default(), nil
	}
	cfg, err := config.Load(filename)
	if err != nil {
		log.Printf("Config: %v, using defaults", err)
		return config.Default(), nil
	}
	log.Debugf("Config: loaded %s", filename)
	return cfg, nil
}

// monitors detects the layout and requires at least two outputs.
func (a *app) monitors(ctx context.Context) ([]monitor.Monitor, error) {
	monitors, err := a.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	if len(monitors) < 2 {
		return nil, fmt.Errorf("%w, found %d", errNeedTwoMonitors, len(monitors))
	}
	return monitors, nil
}

// assign maps left and right onto the two leftmost monitors.
func (a *app) assign(ctx context.Context, left, right string) ([]wallpaper.Assignment, error) {
	monitors, err := a.monitors(ctx)
	if err != nil {
		return nil, err
	}
	return wallpaper.Assign([]string{left, right}, monitors), nil
}
