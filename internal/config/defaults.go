package config

const (
	defaultConfigPath = "~/.config/qualfill/config.toml"
	projectConfigName = "qualfill.toml"
	defaultDataDir    = "~/.local/share/qualfill"
	defaultLogDir     = "~/.local/share/qualfill/logs"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	defaultWorkers    = 4
)

// Default returns a Config populated with repository defaults. No
// assumptions and no filter are configured by default.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Pipeline: Pipeline{
			Workers: defaultWorkers,
		},
	}
}
