// Package config holds the CLI's global, cross-command flags.
package config

// GlobalConfig carries flags shared by every subcommand: logging verbosity
// and format.
type GlobalConfig struct {
	LogLevel string `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Logging verbosity"`
	Pretty   bool   `name:"pretty" default:"true" negatable:"" help:"Human-readable log output instead of JSON"`
	Debug    bool   `name:"debug" help:"Include caller info in log output"`
}
