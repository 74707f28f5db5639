package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"holoupdate/internal/config"
	"holoupdate/internal/history"
)

const (
	actionCurrentChannel = "current-channel"
	actionCurrentVersion = "current-version"
	actionLatestVersion  = "latest-version"
	actionInstall        = "install"
	actionUpgrade        = "upgrade"
	actionUninstall      = "uninstall"
	actionStatus         = "status"
	actionDebugTags      = "debug-tags"
	actionForceRefresh   = "force-refresh"
	actionUpdateGitURL   = "update-git-url"
	actionHistory        = "history"
	actionVersion        = "version"
	actionHelp           = "help"
)

// actionFlags maps every boolean action flag, aliases included, to its
// action. --update-git-url takes a value and is handled separately.
var actionFlags = []struct {
	flag   string
	short  string
	action string
	usage  string
}{
	{"get-current-channel", "", actionCurrentChannel, "Print the channel the installation follows"},
	{"current-channel", "", actionCurrentChannel, "Alias for --get-current-channel"},
	{"get-current-version", "", actionCurrentVersion, "Print the installed version"},
	{"current-version", "", actionCurrentVersion, "Alias for --get-current-version"},
	{"get-latest-version", "", actionLatestVersion, "Print the newest tag on the channel"},
	{"latest-version", "", actionLatestVersion, "Alias for --get-latest-version"},
	{"install", "", actionInstall, "Clone and check out the latest tag"},
	{"upgrade", "", actionUpgrade, "Move an existing installation to the latest tag"},
	{"uninstall", "", actionUninstall, "Remove the program and cache directories"},
	{"status", "", actionStatus, "Show installation status"},
	{"debug-tags", "", actionDebugTags, "Show a sample of local and remote tags"},
	{"force-refresh", "", actionForceRefresh, "Delete local tags and fetch them again"},
	{"history", "", actionHistory, "Show recorded install and upgrade events"},
	{"version", "v", actionVersion, "Print version information and exit"},
	{"help", "h", actionHelp, "Show this help"},
}

var (
	errNoAction     = errors.New("no action given")
	errManyActions  = errors.New("only one action may be given")
	errMissingValue = errors.New("--update-git-url requires a URL")
)

type cliOptions struct {
	action     string
	newGitURL  string
	channel    string
	name       string
	gitURL     string
	configPath string
	debug      bool
	noColor    bool
	limit      int
	// overrides holds config values given explicitly on the command line.
	overrides map[string]any
}

func newFlagSet(w io.Writer) (*pflag.FlagSet, *cliOptions, map[string]*bool) {
	fs := pflag.NewFlagSet("holoupdate", pflag.ContinueOnError)
	fs.SetOutput(w)
	fs.SortFlags = false

	opts := &cliOptions{}
	actions := make(map[string]*bool, len(actionFlags))
	for _, a := range actionFlags {
		actions[a.flag] = fs.BoolP(a.flag, a.short, false, a.usage)
	}
	fs.StringVar(&opts.newGitURL, "update-git-url", "", "Validate `URL` and make it the repository")

	fs.StringVarP(&opts.channel, "channel", "b", "", "Channel to act on (master, release)")
	fs.StringVarP(&opts.name, "name", "n", "", "Application name")
	fs.StringVarP(&opts.gitURL, "git-url", "g", "", "Repository URL used when git.txt is absent")
	fs.StringVar(&opts.configPath, "config", "", "Project config file")
	fs.BoolVar(&opts.debug, "debug", false, "Mirror the operation log to stderr")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	fs.IntVar(&opts.limit, "limit", history.DefaultRecentLimit, "Number of history events to show")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: holoupdate <action> [options]\n\n")
		_, _ = fmt.Fprint(fs.Output(), fs.FlagUsages())
	}
	return fs, opts, actions
}

// parseArgs parses args and picks the single requested action.
func parseArgs(args []string, w io.Writer) (*cliOptions, *pflag.FlagSet, error) {
	fs, opts, actions := newFlagSet(w)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if fs.NArg() > 0 {
		return nil, fs, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	selected := map[string]struct{}{}
	for _, a := range actionFlags {
		if *actions[a.flag] {
			selected[a.action] = struct{}{}
		}
	}
	if fs.Changed("update-git-url") {
		if strings.TrimSpace(opts.newGitURL) == "" {
			return nil, fs, errMissingValue
		}
		opts.newGitURL = strings.TrimSpace(opts.newGitURL)
		selected[actionUpdateGitURL] = struct{}{}
	}

	// Help and version win over anything else on the line.
	for _, early := range []string{actionHelp, actionVersion} {
		if _, ok := selected[early]; ok {
			opts.action = early
			return opts, fs, nil
		}
	}
	switch len(selected) {
	case 0:
		return nil, fs, errNoAction
	case 1:
		for a := range selected {
			opts.action = a
		}
	default:
		return nil, fs, errManyActions
	}

	opts.overrides = map[string]any{}
	if fs.Changed("git-url") {
		opts.overrides[config.KeyGitURL] = strings.TrimSpace(opts.gitURL)
	}
	if fs.Changed("no-color") {
		opts.overrides[config.KeyOutputNoColor] = opts.noColor
	}
	if fs.Changed("debug") {
		opts.overrides[config.KeyLogDebug] = opts.debug
	}
	if fs.Changed("name") {
		opts.overrides[config.KeyAppName] = strings.TrimSpace(opts.name)
	}
	return opts, fs, nil
}
