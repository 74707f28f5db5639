// Package git wraps the git command line for a single working tree.
package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	"holoupdate/internal/debug"
)

// Client runs git against one working tree.
type Client interface {
	Dir() string
	Clone(ctx context.Context, url string) error
	Describe(ctx context.Context) (string, error)
	LocalTags(ctx context.Context, limit int) ([]string, error)
	RemoteTags(ctx context.Context) ([]string, error)
	RemoteTagLines(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context) error
	FetchRefspec(ctx context.Context, refspec string) error
	FetchAll(ctx context.Context) error
	FetchTags(ctx context.Context) error
	Checkout(ctx context.Context, ref string) error
	ResetHard(ctx context.Context, ref string) error
	CleanWorkTree(ctx context.Context) error
	RemoteURL(ctx context.Context) (string, error)
	SetRemoteURL(ctx context.Context, url string) error
	ProbeRemote(ctx context.Context, url string) error
	DeleteAllTags(ctx context.Context) (int, error)
	AddSafeDirectory(ctx context.Context) error
}

type cliClient struct {
	dir     string
	bin     string
	runner  Runner
	timeout time.Duration
}

// Option configures the git client.
type Option func(*cliClient)

// WithBinary overrides the command used to invoke git.
func WithBinary(path string) Option {
	return func(c *cliClient) {
		if strings.TrimSpace(path) != "" {
			c.bin = path
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *cliClient) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithTimeout bounds every git invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *cliClient) {
		c.timeout = d
	}
}

// New constructs a git client for the working tree at dir.
func New(dir string, opts ...Option) Client {
	c := &cliClient{dir: dir, bin: "git", runner: execRunner{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *cliClient) Dir() string {
	return c.dir
}

// Clone runs outside the working tree since it creates it.
func (c *cliClient) Clone(ctx context.Context, url string) error {
	_, err := c.runIn(ctx, "", "clone", url, c.dir)
	return err
}

func (c *cliClient) Describe(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "describe", "--tags")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *cliClient) LocalTags(ctx context.Context, limit int) ([]string, error) {
	out, err := c.run(ctx, "tag", "-l", "--sort=-version:refname")
	if err != nil {
		return nil, err
	}
	return ParseTagList(out, limit), nil
}

func (c *cliClient) RemoteTags(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "ls-remote", "--tags", "--refs", "origin")
	if err != nil {
		return nil, err
	}
	return ParseLsRemote(out), nil
}

func (c *cliClient) RemoteTagLines(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "ls-remote", "--tags", "origin")
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out), nil
}

// Fetch prunes stale remote refs and pulls every tag, falling back to
// fetching all remotes when the pruning fetch is rejected.
func (c *cliClient) Fetch(ctx context.Context) error {
	if _, err := c.run(ctx, "remote", "prune", "origin"); err != nil {
		debug.Logf("git: remote prune failed: %v", err)
	}
	_, err := c.run(ctx, "fetch", "origin", "--tags", "--force", "--prune-tags")
	if err == nil {
		return nil
	}
	debug.Logf("git: fetch with --prune-tags failed, retrying: %v", err)
	if _, err := c.run(ctx, "fetch", "--all", "--tags", "--force"); err != nil {
		return fmt.Errorf("fetch from remote: %w", err)
	}
	return nil
}

func (c *cliClient) FetchRefspec(ctx context.Context, refspec string) error {
	_, err := c.run(ctx, "fetch", "origin", refspec)
	return err
}

func (c *cliClient) FetchAll(ctx context.Context) error {
	_, err := c.run(ctx, "fetch", "--all")
	return err
}

func (c *cliClient) FetchTags(ctx context.Context) error {
	_, err := c.run(ctx, "fetch", "origin", "--tags", "--force")
	return err
}

func (c *cliClient) Checkout(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "checkout", ref)
	return err
}

func (c *cliClient) ResetHard(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "reset", "--hard", ref)
	return err
}

// CleanWorkTree discards local modifications and untracked files. Individual
// step failures are logged and do not stop the remaining steps.
func (c *cliClient) CleanWorkTree(ctx context.Context) error {
	steps := [][]string{
		{"reset", "--hard", "HEAD"},
		{"clean", "-fd"},
		{"checkout", "."},
	}
	for _, args := range steps {
		if _, err := c.run(ctx, args...); err != nil {
			debug.Logf("git: clean step %v failed: %v", args, err)
		}
	}
	return ctx.Err()
}

func (c *cliClient) RemoteURL(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *cliClient) SetRemoteURL(ctx context.Context, url string) error {
	_, err := c.run(ctx, "remote", "set-url", "origin", url)
	return err
}

// ProbeRemote checks that url answers as a git remote.
func (c *cliClient) ProbeRemote(ctx context.Context, url string) error {
	_, err := c.runIn(ctx, "", "ls-remote", "--heads", url)
	return err
}

// DeleteAllTags removes every local tag and reports how many were deleted.
func (c *cliClient) DeleteAllTags(ctx context.Context) (int, error) {
	out, err := c.run(ctx, "tag", "-l")
	if err != nil {
		return 0, err
	}
	tags := nonEmptyLines(out)
	if len(tags) == 0 {
		return 0, nil
	}
	args := append([]string{"tag", "-d"}, tags...)
	if _, err := c.run(ctx, args...); err != nil {
		return 0, err
	}
	return len(tags), nil
}

func (c *cliClient) AddSafeDirectory(ctx context.Context) error {
	_, err := c.runIn(ctx, "", "config", "--global", "--add", "safe.directory", c.dir)
	return err
}

func (c *cliClient) run(ctx context.Context, args ...string) (string, error) {
	return c.runIn(ctx, c.dir, args...)
}

func (c *cliClient) runIn(ctx context.Context, dir string, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	debug.Logf("git: %s %s", c.bin, strings.Join(args, " "))
	stdout, stderr, err := c.runner.Run(ctx, dir, c.bin, args...)
	if err != nil {
		return "", classifyError(c.bin, args, err, stderr)
	}
	return string(stdout), nil
}
