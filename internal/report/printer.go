// Package report renders progress, results and tables for the command line.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"holoupdate/internal/debug"
)

const (
	defaultWidth    = 80
	spinnerInterval = 100 * time.Millisecond
)

var (
	stepColor    = lipgloss.Color("#8BE9FD")
	successColor = lipgloss.Color("#50FA7B")
	warnColor    = lipgloss.Color("#F1FA8C")
	errorColor   = lipgloss.Color("#FF5555")
	dimColor     = lipgloss.Color("#6272A4")
)

type styles struct {
	step    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	dim     lipgloss.Style
}

// Printer writes results to stdout and everything else (progress, warnings,
// errors, the spinner) to stderr so results stay pipeable.
type Printer struct {
	out         io.Writer
	errOut      io.Writer
	noColor     bool
	interactive bool
	width       int
	styles      styles

	mu      sync.Mutex
	spin    *spinner.Spinner
	spinMsg string
}

// Option configures a Printer.
type Option func(*Printer)

// WithOutput sets the result writer.
func WithOutput(w io.Writer) Option {
	return func(p *Printer) { p.out = w }
}

// WithErrorOutput sets the progress and diagnostics writer.
func WithErrorOutput(w io.Writer) Option {
	return func(p *Printer) { p.errOut = w }
}

// WithNoColor disables styling.
func WithNoColor(v bool) Option {
	return func(p *Printer) { p.noColor = p.noColor || v }
}

// WithInteractive forces spinner behaviour on or off instead of detecting a
// terminal.
func WithInteractive(v bool) Option {
	return func(p *Printer) { p.interactive = v }
}

// WithWidth sets the wrap width for long messages.
func WithWidth(n int) Option {
	return func(p *Printer) {
		if n > 0 {
			p.width = n
		}
	}
}

// New builds a Printer. Color is disabled when NO_COLOR is set.
func New(opts ...Option) *Printer {
	p := &Printer{
		out:     os.Stdout,
		errOut:  os.Stderr,
		noColor: os.Getenv("NO_COLOR") != "",
	}
	p.interactive, p.width = detectTerminal(p.errOut)
	for _, opt := range opts {
		opt(p)
	}

	r := lipgloss.NewRenderer(p.errOut)
	if p.noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	p.styles = styles{
		step:    r.NewStyle().Foreground(stepColor).Bold(true),
		success: r.NewStyle().Foreground(successColor),
		warn:    r.NewStyle().Foreground(warnColor),
		err:     r.NewStyle().Foreground(errorColor).Bold(true),
		dim:     r.NewStyle().Foreground(dimColor),
	}
	return p
}

func detectTerminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = defaultWidth
	}
	return true, width
}

// Step announces the start of a unit of work.
func (p *Printer) Step(msg string) {
	p.line(p.errOut, p.styles.step.Render("==>")+" "+msg)
}

// Success reports a completed unit of work.
func (p *Printer) Success(msg string) {
	p.line(p.errOut, p.styles.success.Render("✓ "+msg))
}

// Warn reports a recoverable problem.
func (p *Printer) Warn(msg string) {
	p.line(p.errOut, p.styles.warn.Render("! "+msg))
}

// Error prints err as "Error: <message>", wrapped to the terminal width.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	msg := wordwrap.String("Error: "+err.Error(), p.width)
	p.line(p.errOut, p.styles.err.Render(msg))
}

// Result prints a bare value to stdout.
func (p *Printer) Result(s string) {
	p.line(p.out, s)
}

// Note prints dimmed supplementary text to stdout.
func (p *Printer) Note(s string) {
	p.line(p.out, p.styles.dim.Render(s))
}

// StartSpinner shows msg with a spinner on a terminal, or as a plain step
// line otherwise. A running spinner has its message replaced.
func (p *Printer) StartSpinner(msg string) {
	if !p.interactive {
		p.Step(msg)
		return
	}
	debug.Log(msg)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinMsg = msg
	if p.spin != nil {
		p.spin.Lock()
		p.spin.Suffix = " " + msg
		p.spin.Unlock()
		return
	}
	s := spinner.New(spinner.CharSets[11], spinnerInterval, spinner.WithWriter(p.errOut))
	if !p.noColor {
		s.Color("yellow") //nolint:errcheck
	}
	s.Suffix = " " + msg
	s.Start()
	p.spin = s
}

// StopSpinner clears the spinner, if any.
func (p *Printer) StopSpinner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spin == nil {
		return
	}
	p.spin.Stop()
	p.spin = nil
	p.spinMsg = ""
}

// line writes s plus a newline, pausing the spinner so the two do not
// interleave. Every line is copied, unstyled, to the operation log.
func (p *Printer) line(w io.Writer, s string) {
	if debug.Enabled() {
		debug.Log(ansi.Strip(s))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spin != nil {
		p.spin.Stop()
		defer p.spin.Start()
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, _ = fmt.Fprint(w, s)
}
