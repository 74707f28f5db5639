package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"holoupdate/internal/config"
	"holoupdate/internal/debug"
	"holoupdate/internal/git"
	"holoupdate/internal/history"
	"holoupdate/internal/installer"
	"holoupdate/internal/report"
)

// appNamePrefix marks a working directory that is itself an installation.
const appNamePrefix = "HoloMotion"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is everything an action needs, built once per invocation.
type env struct {
	opts      *cliOptions
	installer *installer.Installer
	history   history.Service
	printer   *report.Printer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errNoAction) {
			fs.Usage()
		}
		return 1
	}
	switch opts.action {
	case actionHelp:
		fs.SetOutput(stdout)
		fs.Usage()
		return 0
	case actionVersion:
		printVersion(stdout)
		return 0
	}

	e, cleanup, err := setup(opts, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	debug.Logf("holoupdate %s: %s for %s", Version, opts.action, e.installer.Layout().App)
	if err := dispatch(ctx, e); err != nil {
		debug.Logf("%s failed: %v", opts.action, err)
		e.printer.Error(err)
		return 1
	}
	return 0
}

func setup(opts *cliOptions, stdout, stderr io.Writer) (*env, func(), error) {
	var cfgOpts []config.Option
	if opts.configPath != "" {
		cfgOpts = append(cfgOpts, config.WithProjectConfig(opts.configPath))
	}
	if err := config.Initialize(cfgOpts...); err != nil {
		return nil, nil, fmt.Errorf("initialize config: %w", err)
	}
	if err := config.ApplyOverrides(opts.overrides); err != nil {
		return nil, nil, fmt.Errorf("apply flags: %w", err)
	}

	cwd, _ := os.Getwd()
	app := detectAppName(opts.name, cwd, config.GetString(config.KeyAppName))
	installRoot, err := config.GetPath(config.KeyInstallRoot)
	if err != nil {
		return nil, nil, err
	}
	cacheDir, err := config.GetPath(config.KeyCacheDir)
	if err != nil {
		return nil, nil, err
	}
	layout := installer.NewLayout(installRoot, cacheDir, app)

	if err := initLogging(layout, stderr); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: operation log unavailable: %v\n", err)
	}

	printer := report.New(
		report.WithOutput(stdout),
		report.WithErrorOutput(stderr),
		report.WithNoColor(config.GetBool(config.KeyOutputNoColor)),
	)

	e := &env{opts: opts, printer: printer}
	if config.GetBool(config.KeyHistoryEnabled) {
		path, err := config.GetPath(config.KeyHistoryPath)
		if err == nil {
			e.history, err = history.NewService(path)
		}
		if err != nil {
			debug.Logf("history disabled: %v", err)
			if opts.action == actionHistory {
				debug.Close()
				return nil, nil, err
			}
		}
	}

	client := git.New(layout.ProgramDir,
		git.WithBinary(config.GetString(config.KeyGitBinary)),
		git.WithTimeout(config.GetDuration(config.KeyGitTimeout)),
	)
	instOpts := []installer.Option{
		installer.WithReporter(printer),
		installer.WithGitURL(config.GetString(config.KeyGitURL)),
		installer.WithLocalTagLimit(config.GetInt(config.KeyTagsLocalLimit)),
	}
	if e.history != nil {
		instOpts = append(instOpts, installer.WithHistory(e.history))
	}
	e.installer = installer.New(layout, client, instOpts...)

	cleanup := func() {
		if e.history != nil {
			if err := e.history.Close(); err != nil {
				debug.Logf("close history: %v", err)
			}
		}
		debug.Close()
	}
	return e, cleanup, nil
}

// initLogging opens the daily log when log.enabled is set and mirrors it to
// stderr under --debug.
func initLogging(layout installer.Layout, stderr io.Writer) error {
	toFile := config.GetBool(config.KeyLogEnabled)
	mirror := config.GetBool(config.KeyLogDebug)
	var opts []debug.Option
	if toFile {
		opts = append(opts, debug.WithDir(layout.LogDir()))
	}
	if mirror {
		opts = append(opts, debug.WithMirror(stderr))
	}
	return debug.Init(toFile || mirror, opts...)
}

// detectAppName prefers an explicit name, then a working directory that
// looks like an installation, then the configured name.
func detectAppName(explicit, cwd, configured string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if cwd != "" {
		base := filepath.Base(cwd)
		if strings.HasPrefix(base, appNamePrefix) {
			return base
		}
	}
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	return config.DefaultAppName
}
