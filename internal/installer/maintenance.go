package installer

import (
	"context"
	"fmt"

	"holoupdate/internal/debug"
	"holoupdate/internal/domain"
	appErrors "holoupdate/internal/errors"
	"holoupdate/internal/history"
	"holoupdate/internal/version"
)

// debugTagSample is how many tags DebugTags shows from each side.
const debugTagSample = 20

// StatusReport summarizes an installation without modifying it, apart from
// refreshing tags from origin.
type StatusReport struct {
	App             string
	ProgramDir      string
	Installed       bool
	GitURL          string
	LogFile         string
	Channel         domain.Channel
	Current         version.Version
	Latest          version.Version
	UpdateAvailable bool
	Notes           []string
}

// Status gathers what is known about the installation. Individual lookups
// that fail become notes; only an invalid channel marker is returned as an
// error.
func (i *Installer) Status(ctx context.Context) (StatusReport, error) {
	rep := StatusReport{
		App:        i.layout.App,
		ProgramDir: i.layout.ProgramDir,
		Installed:  i.layout.RepoExists(),
		LogFile:    debug.GetLogPath(),
	}
	url, err := i.layout.readGitURL()
	if err != nil {
		rep.Notes = append(rep.Notes, fmt.Sprintf("git url: %v", err))
	}
	rep.GitURL = url
	if !rep.Installed {
		rep.Notes = append(rep.Notes, "not installed")
		return rep, nil
	}

	ch, err := i.CurrentChannel(ctx)
	if err != nil {
		if appErrors.IsCode(err, appErrors.CodeInvalidChannel) {
			return rep, err
		}
		rep.Notes = append(rep.Notes, fmt.Sprintf("channel: %v", err))
		ch = domain.ChannelRelease
	}
	rep.Channel = ch

	if cur, err := i.describeVersion(ctx); err != nil {
		rep.Notes = append(rep.Notes, fmt.Sprintf("current version: %v", err))
	} else {
		rep.Current = cur
	}

	if err := i.fetch(ctx); err != nil {
		rep.Notes = append(rep.Notes, fmt.Sprintf("fetch: %v", err))
	}
	res, err := i.resolveLatest(ctx, ch)
	if err != nil {
		rep.Notes = append(rep.Notes, fmt.Sprintf("latest version: %v", err))
		return rep, nil
	}
	rep.Latest = res.Latest
	if rep.Current.Raw != "" {
		rep.UpdateAvailable = rep.Current.LessThan(rep.Latest)
	}
	return rep, nil
}

// TagReport is a sample of the raw tag listings used for resolution.
type TagReport struct {
	Local       []string
	Remote      []string
	LocalTotal  int
	RemoteTotal int
}

// DebugTags returns the first few local tag names and remote ls-remote
// lines. Listing failures are returned; nothing is fetched.
func (i *Installer) DebugTags(ctx context.Context) (TagReport, error) {
	if err := i.layout.assertInstalled(); err != nil {
		return TagReport{}, err
	}
	local, err := i.git.LocalTags(ctx, 0)
	if err != nil {
		return TagReport{}, err
	}
	remote, err := i.git.RemoteTagLines(ctx)
	if err != nil {
		return TagReport{}, err
	}
	return TagReport{
		Local:       head(local, debugTagSample),
		Remote:      head(remote, debugTagSample),
		LocalTotal:  len(local),
		RemoteTotal: len(remote),
	}, nil
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ForceRefresh deletes every local tag and fetches them again from origin.
// It returns how many tags were deleted.
func (i *Installer) ForceRefresh(ctx context.Context) (int, error) {
	n, err := i.forceRefresh(ctx)
	e := history.Event{
		Operation: history.OpForceRefresh,
		Status:    history.StatusSuccess,
		Message:   fmt.Sprintf("deleted %d tags", n),
	}
	if err != nil {
		e.Status = history.StatusFailed
		e.Message = err.Error()
	}
	i.record(ctx, e)
	return n, err
}

func (i *Installer) forceRefresh(ctx context.Context) (int, error) {
	if err := i.layout.assertInstalled(); err != nil {
		return 0, err
	}
	if err := i.ensureRemote(ctx); err != nil {
		return 0, err
	}
	i.reporter.Step("deleting local tags")
	n, err := i.git.DeleteAllTags(ctx)
	if err != nil {
		return n, err
	}
	debug.Logf("deleted %d local tags", n)

	i.reporter.StartSpinner("fetching tags from origin")
	err = i.git.FetchTags(ctx)
	i.reporter.StopSpinner()
	if err != nil {
		return n, err
	}
	i.reporter.Success(fmt.Sprintf("refreshed tags (%d deleted)", n))
	return n, nil
}

// UpdateGitURL validates url, checks it is reachable and makes it the
// repository for this installation. origin is repointed when a checkout
// exists.
func (i *Installer) UpdateGitURL(ctx context.Context, url string) error {
	err := i.updateGitURL(ctx, url)
	e := history.Event{
		Operation: history.OpUpdateGitURL,
		Status:    history.StatusSuccess,
		Message:   url,
	}
	if err != nil {
		e.Status = history.StatusFailed
		e.Message = err.Error()
	}
	i.record(ctx, e)
	return err
}

func (i *Installer) updateGitURL(ctx context.Context, url string) error {
	if !ValidGitURL(url) {
		return appErrors.New(appErrors.CodeInvalidGitURL,
			fmt.Sprintf("invalid git URL: %s", url), nil)
	}
	i.reporter.StartSpinner(fmt.Sprintf("checking %s", url))
	err := i.git.ProbeRemote(ctx, url)
	i.reporter.StopSpinner()
	if err != nil {
		return appErrors.New(appErrors.CodeGitFailed,
			fmt.Sprintf("cannot access git repository: %s", url), err)
	}
	if err := i.layout.saveGitURL(url); err != nil {
		return err
	}
	if i.layout.RepoExists() {
		if err := i.git.SetRemoteURL(ctx, url); err != nil {
			return fmt.Errorf("update origin url: %w", err)
		}
	}
	i.reporter.Success(fmt.Sprintf("git URL set to %s", url))
	return nil
}
