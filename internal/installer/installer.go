// Package installer manages one git-backed application installation: the
// checkout under the install root, its channel and repository markers, and
// the install, upgrade and maintenance operations built on them.
package installer

import (
	"context"
	"fmt"
	"strings"

	"holoupdate/internal/debug"
	appErrors "holoupdate/internal/errors"
	"holoupdate/internal/git"
	"holoupdate/internal/history"
)

// Reporter receives user-facing progress. Implementations must tolerate
// being called from a single goroutine only.
type Reporter interface {
	Step(msg string)
	Success(msg string)
	Warn(msg string)
	StartSpinner(msg string)
	StopSpinner()
}

type nopReporter struct{}

func (nopReporter) Step(string)         {}
func (nopReporter) Success(string)      {}
func (nopReporter) Warn(string)         {}
func (nopReporter) StartSpinner(string) {}
func (nopReporter) StopSpinner()        {}

// Installer runs operations against one Layout.
type Installer struct {
	layout     Layout
	git        git.Client
	history    history.Service
	reporter   Reporter
	gitURL     string
	localLimit int
}

// Option configures an Installer.
type Option func(*Installer)

// WithHistory records install and upgrade outcomes to svc.
func WithHistory(svc history.Service) Option {
	return func(i *Installer) {
		i.history = svc
	}
}

// WithReporter sends progress to r.
func WithReporter(r Reporter) Option {
	return func(i *Installer) {
		if r != nil {
			i.reporter = r
		}
	}
}

// WithGitURL supplies a repository URL for when git.txt has none.
func WithGitURL(url string) Option {
	return func(i *Installer) {
		i.gitURL = strings.TrimSpace(url)
	}
}

// WithLocalTagLimit caps how many local tags take part in resolution.
func WithLocalTagLimit(n int) Option {
	return func(i *Installer) {
		if n > 0 {
			i.localLimit = n
		}
	}
}

// New constructs an Installer. client must be bound to layout.ProgramDir.
func New(layout Layout, client git.Client, opts ...Option) *Installer {
	i := &Installer{
		layout:     layout,
		git:        client,
		reporter:   nopReporter{},
		localLimit: 100,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Layout returns the installation layout.
func (i *Installer) Layout() Layout {
	return i.layout
}

// resolveGitURL picks the repository URL: git.txt first, then the supplied
// URL. A supplied URL that fails the format check or the connectivity probe
// is still used; both only produce warnings. It is written to git.txt when
// that file is absent or blank.
func (i *Installer) resolveGitURL(ctx context.Context) (string, error) {
	stored, err := i.layout.readGitURL()
	switch {
	case err != nil:
		debug.Logf("read %s failed: %v", i.layout.GitURLFile, err)
	case stored != "":
		debug.Logf("using repository from %s: %s", GitURLFileName, stored)
		return stored, nil
	}

	if i.gitURL == "" {
		return "", appErrors.New(appErrors.CodeGitURLMissing,
			fmt.Sprintf("no git repository configured: pass --git-url or create %s", i.layout.GitURLFile), nil)
	}

	url := i.gitURL
	if !ValidGitURL(url) {
		i.reporter.Warn(fmt.Sprintf("git URL %s does not look valid, trying it anyway", url))
	}
	if err := i.git.ProbeRemote(ctx, url); err != nil {
		i.reporter.Warn(fmt.Sprintf("could not reach %s, continuing", url))
		debug.Logf("probe %s failed: %v", url, err)
	}
	if err := i.layout.saveGitURL(url); err != nil {
		i.reporter.Warn(fmt.Sprintf("could not save git URL: %v", err))
	}
	return url, nil
}

// ensureRemote points origin at the configured repository when the two
// differ. An unreadable origin is logged and left alone.
func (i *Installer) ensureRemote(ctx context.Context) error {
	if !i.layout.RepoExists() {
		return nil
	}
	expected, err := i.resolveGitURL(ctx)
	if err != nil {
		return err
	}
	current, err := i.git.RemoteURL(ctx)
	if err != nil {
		debug.Logf("read origin url failed: %v", err)
		return nil
	}
	if sameRemote(expected, current) {
		debug.Logf("origin matches %s", expected)
		return nil
	}
	i.reporter.Step(fmt.Sprintf("updating origin %s -> %s", current, expected))
	if err := i.git.SetRemoteURL(ctx, expected); err != nil {
		return fmt.Errorf("update origin url: %w", err)
	}
	return nil
}

func (i *Installer) fetch(ctx context.Context) error {
	i.reporter.StartSpinner("fetching remote tags")
	defer i.reporter.StopSpinner()
	return i.git.Fetch(ctx)
}

func (i *Installer) record(ctx context.Context, e history.Event) {
	if i.history == nil {
		return
	}
	e.App = i.layout.App
	if _, err := i.history.Record(ctx, e); err != nil {
		debug.Logf("record history failed: %v", err)
	}
}

