package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"qualfill/internal/queue"
	"qualfill/internal/stage"
)

type debugInfo struct {
	Version    string               `json:"version"`
	GoVersion  string               `json:"go_version"`
	Platform   string               `json:"platform"`
	ConfigPath string               `json:"config_path"`
	ConfigFile bool                 `json:"config_file_exists"`
	DataDir    string               `json:"data_dir"`
	LogDir     string               `json:"log_dir"`
	Database   queue.DatabaseHealth `json:"database"`
	Stages     []stage.Health       `json:"stages"`
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}
	return info.Main.Version
}

func newDebugInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "debug-info",
		Short: "Show version, configuration, and queue diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			info := debugInfo{
				Version:    buildVersion(),
				GoVersion:  runtime.Version(),
				Platform:   runtime.GOOS + "/" + runtime.GOARCH,
				ConfigPath: ctx.configPath,
				ConfigFile: ctx.configSeen,
				DataDir:    cfg.Paths.DataDir,
				LogDir:     cfg.Paths.LogDir,
			}

			err = ctx.withStore(func(store *queue.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				info.Database = health
				return err
			})
			if err != nil {
				info.Database.Error = err.Error()
			}

			// Stage health reflects a Start against the loaded configuration.
			mgr, err := newPipeline(cfg, nil, nil)
			if err != nil {
				return err
			}
			stages, err := mgr.Stages()
			if err != nil {
				return err
			}
			for _, reg := range stages {
				_ = reg.Handler.Start(cmd.Context(), cfg)
			}
			info.Stages = mgr.HealthCheck(cmd.Context())

			if ctx.jsonOutput() {
				return writeJSON(cmd, info)
			}
			return printDebugInfo(cmd, info)
		},
	}
}

func printDebugInfo(cmd *cobra.Command, info debugInfo) error {
	p := newStatusPrinter(cmd.OutOrStdout())

	p.section("qualfill")
	p.status("Version", statusInfo, info.Version)
	p.status("Go", statusInfo, info.GoVersion+" "+info.Platform)
	if info.ConfigFile {
		p.status("Config", statusOK, info.ConfigPath)
	} else {
		p.status("Config", statusWarn, info.ConfigPath+" (missing, defaults used)")
	}
	p.status("Data dir", statusInfo, info.DataDir)
	p.status("Log dir", statusInfo, info.LogDir)
	p.blank()

	p.section("Queue")
	db := info.Database
	switch {
	case db.Error != "":
		p.status("Database", statusError, db.Error)
	case len(db.MissingColumns) > 0:
		p.status("Database", statusError, "missing columns: "+strings.Join(db.MissingColumns, ", "))
	case !db.Exists:
		p.status("Database", statusWarn, "not created yet")
	case !db.Healthy():
		p.status("Database", statusWarn, "integrity check: "+db.Integrity)
	default:
		p.status("Database", statusOK, fmt.Sprintf("schema v%d, %d item(s)", db.SchemaVersion, db.Items))
	}
	p.status("Path", statusInfo, db.Path)
	p.blank()

	p.section("Stages")
	for _, h := range info.Stages {
		kind := statusOK
		if !h.Ready {
			kind = statusError
		}
		p.status(h.Name, kind, h.Detail)
	}
	return nil
}
