package installer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"holoupdate/internal/debug"
	"holoupdate/internal/domain"
	appErrors "holoupdate/internal/errors"
	"holoupdate/internal/update"
	"holoupdate/internal/version"
)

// CurrentChannel returns the channel the installation follows. The marker
// file wins; without one the channel is inferred from git describe and then
// persisted.
func (i *Installer) CurrentChannel(ctx context.Context) (domain.Channel, error) {
	ch, found, err := i.layout.readChannel()
	if err != nil {
		return "", err
	}
	if found {
		debug.Logf("channel from %s: %s", ChannelFileName, ch)
		return ch, nil
	}

	if err := i.layout.assertInstalled(); err != nil {
		return "", err
	}
	debug.Log("no channel marker, inferring from tags")
	if err := i.ensureRemote(ctx); err != nil {
		return "", err
	}
	if err := i.fetch(ctx); err != nil {
		return "", err
	}
	describe, err := i.git.Describe(ctx)
	if err != nil {
		return "", err
	}
	ch = domain.InferChannel(describe)
	debug.Logf("describe %q -> channel %s", describe, ch)
	if err := i.layout.writeChannel(ch); err != nil {
		return "", err
	}
	return ch, nil
}

// EffectiveChannel picks the channel an action runs on. An explicit label
// wins and must be valid. Otherwise the installation's current channel is
// used; an invalid marker is fatal, while any other failure (for example a
// fresh machine with nothing installed) falls back to Release.
func (i *Installer) EffectiveChannel(ctx context.Context, explicit string) (domain.Channel, error) {
	if explicit != "" {
		return domain.ParseChannel(explicit)
	}
	ch, err := i.CurrentChannel(ctx)
	if err == nil {
		return ch, nil
	}
	if appErrors.IsCode(err, appErrors.CodeInvalidChannel) {
		return "", err
	}
	debug.Logf("current channel unavailable, defaulting to %s: %v", domain.ChannelRelease, err)
	return domain.ChannelRelease, nil
}

// CurrentVersion parses git describe for the checked out tag.
func (i *Installer) CurrentVersion(ctx context.Context) (version.Version, error) {
	if err := i.layout.assertInstalled(); err != nil {
		return version.Version{}, err
	}
	if err := i.ensureRemote(ctx); err != nil {
		return version.Version{}, err
	}
	return i.describeVersion(ctx)
}

func (i *Installer) describeVersion(ctx context.Context) (version.Version, error) {
	describe, err := i.git.Describe(ctx)
	if err != nil {
		return version.Version{}, err
	}
	v, err := version.ParseTag(describe)
	if err != nil {
		return version.Version{}, appErrors.New(appErrors.CodeMalformedVersion,
			fmt.Sprintf("version format does not match expected pattern: %s", version.Normalize(describe)), err)
	}
	debug.Logf("describe %q -> %s", describe, v)
	return v, nil
}

// LatestVersion refreshes tags from origin and resolves the newest version
// available on ch.
func (i *Installer) LatestVersion(ctx context.Context, ch domain.Channel) (update.Resolution, error) {
	if err := i.layout.assertInstalled(); err != nil {
		return update.Resolution{}, err
	}
	if err := i.ensureRemote(ctx); err != nil {
		return update.Resolution{}, err
	}
	if err := i.fetch(ctx); err != nil {
		return update.Resolution{}, err
	}
	return i.resolveLatest(ctx, ch)
}

// resolveLatest lists remote and local tags concurrently. Either listing
// failing leaves that side empty rather than failing the resolve.
func (i *Installer) resolveLatest(ctx context.Context, ch domain.Channel) (update.Resolution, error) {
	var remote, local []string
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tags, err := i.git.RemoteTags(groupCtx)
		if err != nil {
			debug.Logf("ls-remote failed, ignoring remote tags: %v", err)
			return groupCtx.Err()
		}
		remote = tags
		return nil
	})
	g.Go(func() error {
		tags, err := i.git.LocalTags(groupCtx, i.localLimit)
		if err != nil {
			debug.Logf("tag -l failed, ignoring local tags: %v", err)
			return groupCtx.Err()
		}
		local = tags
		return nil
	})
	if err := g.Wait(); err != nil {
		return update.Resolution{}, err
	}

	res, err := update.Reconcile(ch, remote, local)
	debug.Logf("resolve %s: remote=%d local=%d selected=%s", ch, res.CountA, res.CountB, res.Selected)
	if err != nil {
		return res, err
	}
	debug.Logf("latest on %s: %s", ch, res.Latest.Raw)
	return res, nil
}
