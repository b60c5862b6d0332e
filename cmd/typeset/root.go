package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/literatipub/typeset/internal/config"
	"github.com/literatipub/typeset/internal/fileutil"
	"github.com/literatipub/typeset/internal/hints"
)

// Sentinel errors for the CLI.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrNoInput        = errors.New("no input specified")
	ErrReadManuscript = errors.New("failed to read manuscript")
	ErrWriteOutput    = errors.New("failed to write output")
)

// app carries state shared by subcommands once the root has run setup.
type app struct {
	env    *Environment
	flags  commonFlags
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(env *Environment) *cobra.Command {
	a := &app{env: env}

	cmd := &cobra.Command{
		Use:   "typeset",
		Short: "Typeset manuscripts into print-ready PDF interiors",
		Long: `Typeset turns plain text, Markdown, HTML and DOCX manuscripts into
print-ready book interiors using headless Chrome.

Run it once with 'typeset render', or as an HTTP job service with
'typeset serve'. Settings come from a YAML config file, then TYPESET_*
environment variables (a .env file is loaded if present), then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	addCommonFlags(cmd.PersistentFlags(), &a.flags)
	cmd.SetFlagErrorFunc(usageError)

	cmd.AddCommand(
		newRenderCmd(a),
		newServeCmd(a),
		newFontsCmd(a),
	)
	return cmd
}

// setup loads .env, configures logging and resolves configuration.
func (a *app) setup() error {
	if a.env.LoadDotEnv != nil {
		if err := a.env.LoadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
	}

	a.logger = slog.New(slog.NewTextHandler(a.env.Stderr, &slog.HandlerOptions{Level: a.logLevel()}))

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.env.Environ != nil {
		for _, name := range config.UnknownEnvVars(a.env.Environ()) {
			a.logger.Warn("unknown environment variable", "name", name)
		}
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		a.logger.Debug(fmt.Sprintf(format, args...))
	}))
	return nil
}

// logLevel maps --quiet and --verbose (or TYPESET_VERBOSE) to a level.
func (a *app) logLevel() slog.Level {
	verbose := a.flags.verbose
	if v, err := strconv.ParseBool(a.env.Getenv(config.EnvVerbose)); err == nil && v {
		verbose = true
	}
	switch {
	case verbose:
		return slog.LevelDebug
	case a.flags.quiet:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// loadConfig applies config file < environment. Flags are applied by each
// command.
func (a *app) loadConfig() (*config.Config, error) {
	name := a.flags.config
	if name == "" {
		name = a.env.Getenv(config.EnvConfig)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
		a.logger.Debug("config loaded", "name", name)
	}

	if err := config.ApplyEnv(cfg, a.env.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
