package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"holoupdate/internal/history"
)

// fakeGit is an in-memory git.Client. Calls are recorded in order; ops named
// in fail return errFake.
type fakeGit struct {
	mu sync.Mutex

	dir        string
	describe   string
	local      []string
	remote     []string
	remoteURL  string
	remoteErr  error
	localErr   error
	fail       map[string]bool
	calls      []string
	deleteTags int
}

var errFake = errors.New("fake git failure")

func newFakeGit(dir string) *fakeGit {
	return &fakeGit{dir: dir, fail: map[string]bool{}}
}

func (f *fakeGit) call(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, c)
	if f.fail[c] || f.fail[strings.Fields(c)[0]] {
		return errFake
	}
	return nil
}

func (f *fakeGit) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGit) called(c string) bool {
	for _, got := range f.recorded() {
		if got == c {
			return true
		}
	}
	return false
}

func (f *fakeGit) Dir() string { return f.dir }

func (f *fakeGit) Clone(_ context.Context, url string) error {
	if err := f.call("clone %s", url); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(f.dir, ".git"), 0o755)
}

func (f *fakeGit) Describe(context.Context) (string, error) {
	if err := f.call("describe"); err != nil {
		return "", err
	}
	return f.describe, nil
}

func (f *fakeGit) LocalTags(_ context.Context, limit int) ([]string, error) {
	_ = f.call("tags")
	if f.localErr != nil {
		return nil, f.localErr
	}
	if limit > 0 && len(f.local) > limit {
		return f.local[:limit], nil
	}
	return f.local, nil
}

func (f *fakeGit) RemoteTags(context.Context) ([]string, error) {
	_ = f.call("ls-remote")
	if f.remoteErr != nil {
		return nil, f.remoteErr
	}
	return f.remote, nil
}

func (f *fakeGit) RemoteTagLines(context.Context) ([]string, error) {
	if err := f.call("ls-remote-lines"); err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(f.remote))
	for _, tag := range f.remote {
		lines = append(lines, "abc123\trefs/tags/"+tag)
	}
	return lines, nil
}

func (f *fakeGit) Fetch(context.Context) error { return f.call("fetch") }

func (f *fakeGit) FetchRefspec(_ context.Context, refspec string) error {
	return f.call("fetch-refspec %s", refspec)
}

func (f *fakeGit) FetchAll(context.Context) error  { return f.call("fetch-all") }
func (f *fakeGit) FetchTags(context.Context) error { return f.call("fetch-tags") }

func (f *fakeGit) Checkout(_ context.Context, ref string) error {
	return f.call("checkout %s", ref)
}

func (f *fakeGit) ResetHard(_ context.Context, ref string) error {
	return f.call("reset %s", ref)
}

func (f *fakeGit) CleanWorkTree(context.Context) error { return f.call("clean") }

func (f *fakeGit) RemoteURL(context.Context) (string, error) {
	if err := f.call("get-url"); err != nil {
		return "", err
	}
	return f.remoteURL, nil
}

func (f *fakeGit) SetRemoteURL(_ context.Context, url string) error {
	if err := f.call("set-url %s", url); err != nil {
		return err
	}
	f.mu.Lock()
	f.remoteURL = url
	f.mu.Unlock()
	return nil
}

func (f *fakeGit) ProbeRemote(_ context.Context, url string) error {
	return f.call("probe %s", url)
}

func (f *fakeGit) DeleteAllTags(context.Context) (int, error) {
	if err := f.call("delete-tags"); err != nil {
		return 0, err
	}
	return f.deleteTags, nil
}

func (f *fakeGit) AddSafeDirectory(context.Context) error { return f.call("safe-directory") }

type fakeHistory struct {
	events []history.Event
}

func (h *fakeHistory) Record(_ context.Context, e history.Event) (int64, error) {
	h.events = append(h.events, e)
	return int64(len(h.events)), nil
}

func (h *fakeHistory) Recent(context.Context, string, int) ([]history.Event, error) {
	return h.events, nil
}

func (h *fakeHistory) Close() error { return nil }

type recordingReporter struct {
	warnings []string
	steps    []string
}

func (r *recordingReporter) Step(msg string)     { r.steps = append(r.steps, msg) }
func (r *recordingReporter) Success(string)      {}
func (r *recordingReporter) Warn(msg string)     { r.warnings = append(r.warnings, msg) }
func (r *recordingReporter) StartSpinner(string) {}
func (r *recordingReporter) StopSpinner()        {}

const testURL = "https://example.com/holo/HoloMotion.git"

type fixture struct {
	layout   Layout
	git      *fakeGit
	history  *fakeHistory
	reporter *recordingReporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	layout := NewLayout(filepath.Join(root, "bin"), filepath.Join(root, "cache"), "HoloMotion")
	return &fixture{
		layout:   layout,
		git:      newFakeGit(layout.ProgramDir),
		history:  &fakeHistory{},
		reporter: &recordingReporter{},
	}
}

func (fx *fixture) installer(opts ...Option) *Installer {
	base := []Option{WithHistory(fx.history), WithReporter(fx.reporter)}
	return New(fx.layout, fx.git, append(base, opts...)...)
}

// installed makes the layout look like an existing checkout tracking testURL.
func (fx *fixture) installed(t *testing.T) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(fx.layout.ProgramDir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	if err := fx.layout.saveGitURL(testURL); err != nil {
		t.Fatalf("save git url: %v", err)
	}
	fx.git.remoteURL = testURL
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
