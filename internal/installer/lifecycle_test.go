package installer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holoupdate/internal/domain"
	appErrors "holoupdate/internal/errors"
	"holoupdate/internal/history"
	"holoupdate/internal/version"
)

func TestInstallChecksOutLatestReleaseTag(t *testing.T) {
	fx := newFixture(t)
	fx.git.remote = []string{"v1.0.0", "v1.1.0", "v1.2.0-beta"}
	fx.git.local = []string{"v1.0.0"}

	out, err := fx.installer(WithGitURL(testURL)).Install(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)

	assert.Equal(t, "v1.1.0", out.To.Raw)
	assert.Equal(t, "checkout", out.Strategy)
	assert.True(t, fx.git.called("clone "+testURL))
	assert.True(t, fx.git.called("checkout v1.1.0"))
	assert.Equal(t, "release", readFile(t, fx.layout.ChannelFile))
	assert.Equal(t, testURL, readFile(t, fx.layout.GitURLFile))

	require.Len(t, fx.history.events, 1)
	e := fx.history.events[0]
	assert.Equal(t, history.OpInstall, e.Operation)
	assert.Equal(t, history.StatusSuccess, e.Status)
	assert.Equal(t, "HoloMotion", e.App)
	assert.Equal(t, "v1.1.0", e.ToVersion)
}

func TestInstallReplacesPreviousProgramDir(t *testing.T) {
	fx := newFixture(t)
	fx.git.remote = []string{"v1.0.0"}
	stale := filepath.Join(fx.layout.ProgramDir, "stale.bin")
	require.NoError(t, os.MkdirAll(fx.layout.ProgramDir, 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := fx.installer(WithGitURL(testURL)).Install(context.Background(), domain.ChannelMaster)
	require.NoError(t, err)

	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr), "stale file should be gone")
	assert.Equal(t, "master", readFile(t, fx.layout.ChannelFile))
}

func TestInstallWithoutGitURL(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.installer().Install(context.Background(), domain.ChannelRelease)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeGitURLMissing))
	assert.False(t, fx.git.called("clone "+testURL))

	require.Len(t, fx.history.events, 1)
	assert.Equal(t, history.StatusFailed, fx.history.events[0].Status)
}

func TestInstallWarnsOnUnreachableURL(t *testing.T) {
	fx := newFixture(t)
	fx.git.remote = []string{"v1.0.0"}
	fx.git.fail["probe "+testURL] = true

	_, err := fx.installer(WithGitURL(testURL)).Install(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)
	assert.NotEmpty(t, fx.reporter.warnings)
}

func TestInstallNoCandidates(t *testing.T) {
	fx := newFixture(t)
	fx.git.remote = []string{"nightly", "v2.0.0-rc.1"}

	_, err := fx.installer(WithGitURL(testURL)).Install(context.Background(), domain.ChannelRelease)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeNoCandidateVersions))
	assert.False(t, fx.git.called("checkout v2.0.0-rc.1"))
}

func TestInstallFallsBackThroughCascade(t *testing.T) {
	fx := newFixture(t)
	fx.git.remote = []string{"v1.0.0"}
	fx.git.fail["checkout v1.0.0"] = true
	fx.git.fail["fetch-refspec"] = true

	out, err := fx.installer(WithGitURL(testURL)).Install(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)
	assert.Equal(t, "fetch-all-reset", out.Strategy)
	assert.True(t, fx.git.called("reset v1.0.0"))
	assert.Equal(t, "fetch-all-reset", fx.history.events[0].Strategy)
}

func TestUpgradeRequiresInstall(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.installer().Upgrade(context.Background(), domain.ChannelRelease)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeNotInstalled))
	assert.Contains(t, err.Error(), "HoloMotion")
}

func TestUpgradeAlreadyLatest(t *testing.T) {
	fx := newFixture(t)
	fx.installed(t)
	fx.git.describe = "v1.1.0"
	fx.git.remote = []string{"v1.0.0", "v1.1.0"}

	out, err := fx.installer().Upgrade(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)
	assert.True(t, out.UpToDate)
	assert.False(t, fx.git.called("clean"))
	assert.False(t, fx.git.called("checkout v1.1.0"))

	require.Len(t, fx.history.events, 1)
	assert.Equal(t, history.StatusUpToDate, fx.history.events[0].Status)
}

func TestUpgradeDescribePastTagStillUpToDate(t *testing.T) {
	fx := newFixture(t)
	fx.installed(t)
	fx.git.describe = "v1.1.0-4-g1a2b3c4"
	fx.git.remote = []string{"v1.1.0"}

	out, err := fx.installer().Upgrade(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)
	assert.True(t, out.UpToDate)
}

func TestUpgradeWhenOnlyBuildMetadataDiffers(t *testing.T) {
	fx := newFixture(t)
	fx.installed(t)
	fx.git.describe = "v1.0.0+b1"
	fx.git.remote = []string{"v1.0.0+b2"}

	out, err := fx.installer().Upgrade(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)
	assert.False(t, out.UpToDate)
	assert.True(t, fx.git.called("checkout v1.0.0+b2"))
}

func TestSameRelease(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{current: "v1.1.0", latest: "v1.1.0", want: true},
		{current: "v1.1.0-4-g1a2b3c4", latest: "v1.1.0", want: true},
		{current: "refs/tags/v1.1.0", latest: "1.1.0", want: true},
		{current: "v1.0.0+b1", latest: "v1.0.0+b2", want: false},
		{current: "v01.0.0", latest: "v1.0.0", want: false},
		{current: "v1.0.0", latest: "v1.1.0", want: false},
	}
	for _, tt := range tests {
		cur, err := version.ParseTag(tt.current)
		require.NoError(t, err)
		latest, err := version.ParseTag(tt.latest)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sameRelease(cur, latest), "sameRelease(%q, %q)", tt.current, tt.latest)
	}
}

func TestWriteChannelRejectsUnknown(t *testing.T) {
	fx := newFixture(t)
	require.Error(t, fx.layout.writeChannel(domain.Channel("nightly")))
	_, statErr := os.Stat(fx.layout.ChannelFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpgradeMovesToLatest(t *testing.T) {
	fx := newFixture(t)
	fx.installed(t)
	fx.git.describe = "v1.0.0"
	fx.git.remote = []string{"v1.0.0", "v1.1.0"}
	fx.git.local = []string{"v1.0.0"}

	out, err := fx.installer().Upgrade(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)
	assert.False(t, out.UpToDate)
	assert.Equal(t, "1.0.0", out.From.String())
	assert.Equal(t, "v1.1.0", out.To.Raw)
	assert.True(t, fx.git.called("clean"))
	assert.True(t, fx.git.called("checkout v1.1.0"))
	assert.Equal(t, "release", readFile(t, fx.layout.ChannelFile))

	e := fx.history.events[0]
	assert.Equal(t, history.OpUpgrade, e.Operation)
	assert.Equal(t, "1.0.0", e.FromVersion)
	assert.Equal(t, "v1.1.0", e.ToVersion)
}

func TestUpgradeRepointsOrigin(t *testing.T) {
	fx := newFixture(t)
	fx.installed(t)
	fx.git.remoteURL = "https://old.example.com/holo.git"
	fx.git.describe = "v1.0.0"
	fx.git.remote = []string{"v1.0.0"}

	_, err := fx.installer().Upgrade(context.Background(), domain.ChannelRelease)
	require.NoError(t, err)
	assert.True(t, fx.git.called("set-url "+testURL))
}

func TestUpgradeAllStrategiesFail(t *testing.T) {
	fx := newFixture(t)
	fx.installed(t)
	fx.git.describe = "v1.0.0"
	fx.git.remote = []string{"v1.1.0"}
	fx.git.fail["checkout v1.1.0"] = true
	fx.git.fail["fetch-refspec"] = true
	fx.git.fail["fetch-all"] = true
	fx.git.fail["reset"] = true

	_, err := fx.installer().Upgrade(context.Background(), domain.ChannelRelease)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeAllStrategiesFailed))
	assert.Equal(t, history.StatusFailed, fx.history.events[0].Status)

	_, statErr := os.Stat(fx.layout.ChannelFile)
	assert.True(t, os.IsNotExist(statErr), "channel marker must not be written on failure")
}

func TestUninstallRemovesProgramAndCache(t *testing.T) {
	fx := newFixture(t)
	fx.installed(t)
	require.NoError(t, os.MkdirAll(fx.layout.LogDir(), 0o755))

	require.NoError(t, fx.installer().Uninstall(context.Background()))

	for _, dir := range []string{fx.layout.ProgramDir, fx.layout.CacheDir} {
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "%s should be removed", dir)
	}
	require.Len(t, fx.history.events, 1)
	assert.Equal(t, history.OpUninstall, fx.history.events[0].Operation)
}

func TestUninstallWhenNothingInstalled(t *testing.T) {
	fx := newFixture(t)
	assert.NoError(t, fx.installer().Uninstall(context.Background()))
}
