package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	appErrors "holoupdate/internal/errors"
)

const maxErrorSnippetLen = 200

// CLIError wraps a failed git invocation.
type CLIError struct {
	Binary  string
	Command []string
	Output  string
	Err     error
}

func (e CLIError) Error() string {
	bin := e.Binary
	if bin == "" {
		bin = "git"
	}
	if e.Output != "" {
		return fmt.Sprintf("%s %s failed: %s", bin, strings.Join(e.Command, " "), e.Output)
	}
	return fmt.Sprintf("%s %s failed: %v", bin, strings.Join(e.Command, " "), e.Err)
}

func (e CLIError) Unwrap() error {
	return e.Err
}

func classifyError(bin string, args []string, err error, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return appErrors.New(appErrors.CodeGitNotFound, fmt.Sprintf("%s binary not found in PATH", bin), err)
	}
	snippet := strings.TrimSpace(string(stderr))
	snippet = truncate(snippet, maxErrorSnippetLen)
	cliErr := CLIError{Binary: bin, Command: args, Output: snippet, Err: err}
	return appErrors.New(appErrors.CodeGitFailed, cliErr.Error(), cliErr)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence and
// marks the cut with "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
