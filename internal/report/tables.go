package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"holoupdate/internal/history"
	"holoupdate/internal/installer"
	"holoupdate/internal/version"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	return t
}

// Status renders an installation summary.
func (p *Printer) Status(rep installer.StatusReport) {
	t := p.newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Application", rep.App})
	t.AppendRow(table.Row{"Directory", rep.ProgramDir})
	t.AppendRow(table.Row{"Installed", yesNo(rep.Installed)})
	t.AppendRow(table.Row{"Git URL", orDash(rep.GitURL)})
	t.AppendRow(table.Row{"Log file", orDash(rep.LogFile)})
	if rep.Installed {
		t.AppendRow(table.Row{"Channel", orDash(rep.Channel.String())})
		t.AppendRow(table.Row{"Current version", versionText(rep.Current, false)})
		t.AppendRow(table.Row{"Latest version", versionText(rep.Latest, true)})
		t.AppendRow(table.Row{"Update available", yesNo(rep.UpdateAvailable)})
	}
	t.Render()
	for _, n := range rep.Notes {
		p.Note("note: " + n)
	}
}

// Tags renders the tag sample from DebugTags.
func (p *Printer) Tags(rep installer.TagReport) {
	// Titles go on their own line; go-pretty wraps them to the table width.
	p.Result(fmt.Sprintf("Local tags (%d of %d)", len(rep.Local), rep.LocalTotal))
	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Tag"})
	for n, tag := range rep.Local {
		t.AppendRow(table.Row{n + 1, tag})
	}
	t.Render()

	p.Result(fmt.Sprintf("Remote tags (%d of %d)", len(rep.Remote), rep.RemoteTotal))
	t = p.newTable()
	t.AppendHeader(table.Row{"#", "Object", "Ref"})
	for n, line := range rep.Remote {
		sha, ref, found := strings.Cut(line, "\t")
		if !found {
			sha, ref = "", line
		}
		t.AppendRow(table.Row{n + 1, sha, ref})
	}
	t.Render()
}

// History renders ledger events, newest first as given.
func (p *Printer) History(events []history.Event) {
	if len(events) == 0 {
		p.Note("no history recorded")
		return
	}
	t := p.newTable()
	t.AppendHeader(table.Row{"ID", "Time", "Operation", "Channel", "From", "To", "Strategy", "Status", "Message"})
	for _, e := range events {
		t.AppendRow(table.Row{
			e.ID,
			e.CreatedAt.Local().Format(historyTimeLayout),
			string(e.Operation),
			orDash(e.Channel),
			orDash(e.FromVersion),
			orDash(e.ToVersion),
			orDash(e.Strategy),
			string(e.Status),
			e.Message,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Message", WidthMax: 48}})
	t.Render()
}

// versionText shows the tag text when asTag is set, the canonical form
// otherwise, and a dash for a version that was never resolved.
func versionText(v version.Version, asTag bool) string {
	if v.Raw == "" {
		return "-"
	}
	if asTag {
		return v.Raw
	}
	return v.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
