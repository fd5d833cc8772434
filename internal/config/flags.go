package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagAddr    = flag.String("addr", "", "HTTP listen address for serve")
	flagLogFile = flag.String("log-file", "", "Write logs to this file as well")
	flagJSON    = flag.Bool("json-logs", false, "Emit logs as JSON")
	flagTracing = flag.Bool("tracing", false, "Enable OpenTelemetry tracing")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagJSON {
		cfg.Logging.Format = "json"
	}
	if *flagTracing {
		cfg.Tracing.Enabled = true
	}
}
