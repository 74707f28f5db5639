package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"holoupdate/internal/debug"
	"holoupdate/internal/domain"
	appErrors "holoupdate/internal/errors"
)

const (
	// ChannelFileName holds the channel an installation follows.
	ChannelFileName = "branch.txt"
	// GitURLFileName holds the repository URL an installation tracks.
	GitURLFileName = "git.txt"
)

// Layout is the on-disk shape of one installed application.
type Layout struct {
	App         string
	InstallRoot string
	ProgramDir  string
	CacheDir    string
	ChannelFile string
	GitURLFile  string
}

// NewLayout places app under installRoot. Paths must already be expanded.
func NewLayout(installRoot, cacheDir, app string) Layout {
	programDir := filepath.Join(installRoot, app)
	return Layout{
		App:         app,
		InstallRoot: installRoot,
		ProgramDir:  programDir,
		CacheDir:    cacheDir,
		ChannelFile: filepath.Join(programDir, ChannelFileName),
		GitURLFile:  filepath.Join(programDir, GitURLFileName),
	}
}

// LogDir is where the daily operation logs go.
func (l Layout) LogDir() string {
	return debug.DirFor(l.CacheDir)
}

// RepoExists reports whether the program directory is a git checkout.
func (l Layout) RepoExists() bool {
	info, err := os.Stat(filepath.Join(l.ProgramDir, ".git"))
	return err == nil && info != nil
}

func (l Layout) assertInstalled() error {
	if !l.RepoExists() {
		return appErrors.New(appErrors.CodeNotInstalled,
			fmt.Sprintf("application %s is not installed, run --install first", l.App), nil)
	}
	return nil
}

// readChannel returns the persisted channel. found is false when the marker
// does not exist. A marker with an unknown label is an error.
func (l Layout) readChannel() (ch domain.Channel, found bool, err error) {
	//nolint:gosec // G304: marker path is derived from the install layout
	data, err := os.ReadFile(l.ChannelFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("read %s", l.ChannelFile), err)
	}
	ch, err = domain.ParseChannel(string(data))
	if err != nil {
		return "", true, err
	}
	return ch, true, nil
}

func (l Layout) writeChannel(ch domain.Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("refusing to write unknown channel %q", ch)
	}
	if err := os.MkdirAll(filepath.Dir(l.ChannelFile), 0o755); err != nil {
		return fmt.Errorf("create program directory: %w", err)
	}
	//nolint:gosec // G306: marker files are not secret
	if err := os.WriteFile(l.ChannelFile, []byte(ch.String()), 0o644); err != nil {
		return fmt.Errorf("write channel marker: %w", err)
	}
	return nil
}

// readGitURL returns the trimmed contents of git.txt. An absent or blank
// file yields "" without error.
func (l Layout) readGitURL() (string, error) {
	//nolint:gosec // G304: marker path is derived from the install layout
	data, err := os.ReadFile(l.GitURLFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (l Layout) saveGitURL(url string) error {
	if err := os.MkdirAll(filepath.Dir(l.GitURLFile), 0o755); err != nil {
		return fmt.Errorf("create program directory: %w", err)
	}
	//nolint:gosec // G306: marker files are not secret
	if err := os.WriteFile(l.GitURLFile, []byte(url), 0o644); err != nil {
		return fmt.Errorf("write git url: %w", err)
	}
	return nil
}
