// Package cli wires up the s739 command-line surface: kong for argument
// parsing and dispatch, charmbracelet/log for structured output, and
// kongplete for shell completion generation.
package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/s739/s739/cmd/s739/internal/build"
	"github.com/s739/s739/cmd/s739/internal/commands"
	"github.com/s739/s739/cmd/s739/internal/config"
)

const (
	appName        = "s739"
	appDescription = "Embed and recover payloads hidden in PNG and JPEG carriers via keyed LSB steganography"
)

// CLI is the root command structure.
type CLI struct {
	config.GlobalConfig

	Version  versionFlag                   `name:"version" help:"Print build information and exit."`
	Encode   commands.EncodeCmd            `cmd:"" name:"encode" help:"Embed a payload into a carrier image"`
	Decode   commands.DecodeCmd            `cmd:"" name:"decode" help:"Recover a payload from a carrier image"`
	Generate kongplete.InstallCompletions  `cmd:"" name:"generate" help:"Install (or with --uninstall remove) shell completion in the user's shell config"`
}

// versionFlag is a bool-shaped kong flag that short-circuits parsing to
// print full build metadata, the same pattern kong's own docs use for
// --version flags.
type versionFlag bool

func (v versionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v versionFlag) IsBool() bool                         { return true }

func (v versionFlag) BeforeApply(app *kong.Kong) error {
	build.PrintBuildInfo()
	app.Exit(0)
	return nil
}

// Run parses arguments and dispatches to the selected subcommand.
func Run(version, commit, date string) error {
	build.SetBuildInfo(version, commit, date)

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"version": version,
			"commit":  commit,
			"date":    date,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	kongplete.Complete(parser,
		kongplete.WithPredictor("existingfile", complete.PredictFiles("*")),
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger := setupLogger(&cli.GlobalConfig)
	logger.Debug("s739 starting", "version", version, "commit", commit, "build_date", date)

	if err := ctx.Run(&cli.GlobalConfig, parser); err != nil {
		logger.Error("command failed", "error", err)
		return err
	}
	return nil
}

// setupLogger configures the global logger's level and format.
func setupLogger(cfg *config.GlobalConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if !cfg.Pretty {
		logger.SetFormatter(log.JSONFormatter)
	}

	log.SetDefault(logger)
	return logger
}
