package installer

import (
	"context"
	"fmt"
	"os"

	"holoupdate/internal/debug"
	"holoupdate/internal/domain"
	"holoupdate/internal/history"
	"holoupdate/internal/update"
	"holoupdate/internal/version"
)

// Outcome describes a finished install or upgrade.
type Outcome struct {
	Channel  domain.Channel
	From     version.Version
	To       version.Version
	Strategy string
	UpToDate bool
}

// Install clones the repository into a fresh program directory and checks
// out the latest tag on ch.
func (i *Installer) Install(ctx context.Context, ch domain.Channel) (Outcome, error) {
	out := Outcome{Channel: ch}
	err := i.install(ctx, &out)
	i.recordOutcome(ctx, history.OpInstall, out, err)
	return out, err
}

func (i *Installer) install(ctx context.Context, out *Outcome) error {
	i.reporter.Step(fmt.Sprintf("installing %s on channel %s", i.layout.App, out.Channel))
	url, err := i.resolveGitURL(ctx)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(i.layout.ProgramDir); err != nil {
		return fmt.Errorf("remove previous install: %w", err)
	}
	if err := os.MkdirAll(i.layout.InstallRoot, 0o755); err != nil {
		return fmt.Errorf("create install root: %w", err)
	}

	i.reporter.StartSpinner(fmt.Sprintf("cloning %s", url))
	err = i.git.Clone(ctx, url)
	i.reporter.StopSpinner()
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	if err := i.git.AddSafeDirectory(ctx); err != nil {
		debug.Logf("add safe.directory failed: %v", err)
	}
	// The clone replaced the program directory, taking git.txt with it.
	if err := i.layout.saveGitURL(url); err != nil {
		i.reporter.Warn(fmt.Sprintf("could not save git URL: %v", err))
	}

	if err := i.fetch(ctx); err != nil {
		return err
	}
	res, err := i.resolveLatest(ctx, out.Channel)
	if err != nil {
		return err
	}
	out.To = res.Latest

	if err := i.checkout(ctx, out); err != nil {
		return err
	}
	if err := i.layout.writeChannel(out.Channel); err != nil {
		return err
	}
	i.reporter.Success(fmt.Sprintf("installed %s", out.To.Raw))
	return nil
}

// Upgrade moves an existing installation onto the latest tag on ch. It is a
// no-op when the installed version already orders equal to the latest.
func (i *Installer) Upgrade(ctx context.Context, ch domain.Channel) (Outcome, error) {
	out := Outcome{Channel: ch}
	err := i.upgrade(ctx, &out)
	i.recordOutcome(ctx, history.OpUpgrade, out, err)
	return out, err
}

func (i *Installer) upgrade(ctx context.Context, out *Outcome) error {
	if err := i.layout.assertInstalled(); err != nil {
		return err
	}
	i.reporter.Step(fmt.Sprintf("upgrading %s on channel %s", i.layout.App, out.Channel))
	if err := i.ensureRemote(ctx); err != nil {
		return err
	}
	if err := i.fetch(ctx); err != nil {
		return err
	}

	current, err := i.describeVersion(ctx)
	if err != nil {
		return err
	}
	out.From = current
	res, err := i.resolveLatest(ctx, out.Channel)
	if err != nil {
		return err
	}
	out.To = res.Latest
	debug.Logf("current %s, latest %s", current, res.Latest.Raw)

	if sameRelease(current, res.Latest) {
		out.UpToDate = true
		i.reporter.Success(fmt.Sprintf("already on the latest version %s", res.Latest.Raw))
		return nil
	}

	if err := i.git.CleanWorkTree(ctx); err != nil {
		return err
	}
	if err := i.checkout(ctx, out); err != nil {
		return err
	}
	if err := i.layout.writeChannel(out.Channel); err != nil {
		return err
	}
	i.reporter.Success(fmt.Sprintf("upgraded %s -> %s", current, out.To.Raw))
	return nil
}

// sameRelease reports whether the installed version is the latest one. The
// versions must order equal and their normalized tag text must match, so a
// change in build metadata or digit padding still counts as an update.
func sameRelease(current, latest version.Version) bool {
	return current.Equal(latest) && version.Normalize(current.Raw) == version.Normalize(latest.Raw)
}

func (i *Installer) checkout(ctx context.Context, out *Outcome) error {
	i.reporter.Step(fmt.Sprintf("switching to %s", out.To.Raw))
	name, err := update.RunCascade(ctx, update.CheckoutStrategies(i.git, out.To.Raw))
	if err != nil {
		return err
	}
	out.Strategy = name
	return nil
}

// Uninstall removes the program directory and the cache directory.
func (i *Installer) Uninstall(ctx context.Context) error {
	i.reporter.Step(fmt.Sprintf("uninstalling %s", i.layout.App))
	err := i.uninstall()
	status := history.StatusSuccess
	msg := ""
	if err != nil {
		status = history.StatusFailed
		msg = err.Error()
	}
	i.record(ctx, history.Event{Operation: history.OpUninstall, Status: status, Message: msg})
	if err != nil {
		return err
	}
	i.reporter.Success("uninstall complete")
	return nil
}

func (i *Installer) uninstall() error {
	// The open log file lives under CacheDir; unlinking it is fine on unix.
	debug.Logf("removing %s and %s", i.layout.ProgramDir, i.layout.CacheDir)
	for _, dir := range []string{i.layout.ProgramDir, i.layout.CacheDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}
	return nil
}

func (i *Installer) recordOutcome(ctx context.Context, op history.Operation, out Outcome, err error) {
	e := history.Event{
		Operation: op,
		Channel:   out.Channel.String(),
		ToVersion: out.To.Raw,
		Strategy:  out.Strategy,
		Status:    history.StatusSuccess,
	}
	if out.From.Raw != "" {
		e.FromVersion = out.From.String()
	}
	switch {
	case err != nil:
		e.Status = history.StatusFailed
		e.Message = err.Error()
	case out.UpToDate:
		e.Status = history.StatusUpToDate
	}
	i.record(ctx, e)
}
