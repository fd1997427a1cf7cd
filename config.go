package main

import (
	"context"

	"github.com/adrg/xdg"
	"github.com/vimeo/dials"
	"github.com/vimeo/dials/sources/env"
	"github.com/vimeo/dials/sources/flag"
)

type Config struct {
	StateFile        string `dialsdesc:"Path of the persisted device settings file"`
	LogFile          string `dialsdesc:"Path of the rotated log file"`
	DebugLevel       string `dialsdesc:"Log level, or a SUBSYS=level,... list"`
	CheckUpdates     bool   `dialsdesc:"Check for a newer release on startup"`
	HeartbeatSeconds int    `dialsdesc:"Interval of the periodic re-enforcement pass, 0 disables"`
	NoTray           bool   `dialsdesc:"Run headless without a tray icon"`
}

func defaultConfig() *Config {
	logFile, err := xdg.DataFile("volkeeper/logs/volkeeper.log")
	if err != nil {
		logFile = "volkeeper.log"
	}

	return &Config{
		StateFile:        "",
		LogFile:          logFile,
		DebugLevel:       "info",
		CheckUpdates:     true,
		HeartbeatSeconds: 30,
		NoTray:           false,
	}
}

func loadConfig(ctx context.Context) (*Config, error) {
	cfg := defaultConfig()
	flagSrc, err := flag.NewCmdLineSet(flag.DefaultFlagNameConfig(), cfg)
	if err != nil {
		return nil, err
	}
	d, err := dials.Config(ctx, cfg, &env.Source{}, flagSrc)
	if err != nil {
		return nil, err
	}
	return d.View(), nil
}
