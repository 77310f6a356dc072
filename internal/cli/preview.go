package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/sammcj/mcp-pdfedit/internal/llm"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// PrintError writes a highlighted error line.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", red("error:"), msg)
}

// PrintLoad summarises a loaded document.
func PrintLoad(w io.Writer, r *editor.LoadResult) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "%s %s (%s)\n", bold("Loaded"), r.Filename, r.Size)
	fmt.Fprintf(w, "  pages: %d  text blocks: %d  characters: %d\n",
		r.Stats.Pages, r.Stats.Spans, r.Stats.Characters)
	if r.Degraded {
		fmt.Fprintf(w, "  %s text extraction failed, edits will fall back to the raw text\n", yellow("warning:"))
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "    %s\n", faint(d))
		}
	}
	if r.Preview != "" {
		fmt.Fprintf(w, "  %s\n", faint(firstLine(r.Preview)))
	}
}

// PrintProposal lists proposed edits with their checks.
func PrintProposal(w io.Writer, r *editor.ProposeResult) {
	if r == nil || r.Proposal == nil {
		return
	}
	p := r.Proposal

	source := string(p.Source)
	if p.Model != "" {
		source += ", " + p.Model
	}
	fmt.Fprintf(w, "%s %s %s\n", bold("Proposal"), p.Summary, faint("("+source+")"))
	if p.Source == edits.SourceFallback {
		fmt.Fprintf(w, "  %s model answer was not usable, edits derived from the instruction\n", yellow("note:"))
	}

	found := make(map[int]edits.Check, len(r.Checks))
	for _, c := range r.Checks {
		found[c.Index] = c
	}

	if len(p.Edits) == 0 {
		fmt.Fprintln(w, "  no modifications")
		return
	}
	for i, e := range p.Edits {
		var line string
		switch e := e.(type) {
		case edits.Replace:
			line = fmt.Sprintf("%s %q -> %q", blue("replace"), e.OriginalText, e.NewText)
		case edits.Highlight:
			line = fmt.Sprintf("%s %q", yellow("highlight"), e.TargetText)
		}

		mark := green("found")
		if c, ok := found[i]; ok && !c.Found {
			mark = red("missing")
			if c.Suggestion != "" {
				mark += faint(fmt.Sprintf(" (did you mean %q?)", c.Suggestion))
			}
		}
		fmt.Fprintf(w, "  %d. %s  %s\n", i+1, line, mark)
	}
}

// PrintOutput summarises a render and the file it was exported to.
func PrintOutput(w io.Writer, r *editor.GenerateResult, export *editor.ExportResult) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", bold("Rendered"), r.Counts)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  %s %s\n", yellow("warning:"), warning)
	}
	if export != nil {
		fmt.Fprintf(w, "%s %s (%s)\n", green("Wrote"), export.Location, export.Size)
	}
}

// PrintRun writes every stage of a one-shot edit.
func PrintRun(w io.Writer, r *editor.RunResult) {
	if r == nil {
		return
	}
	PrintLoad(w, r.Load)
	PrintProposal(w, r.Proposal)
	PrintOutput(w, r.Output, r.Export)
}

// PrintProbe reports model availability.
func PrintProbe(w io.Writer, s llm.Status) {
	if s.Ready {
		fmt.Fprintf(w, "%s %s\n", green("ready"), s.Model)
		return
	}
	fmt.Fprintf(w, "%s\n", red("unavailable"))
	if len(s.Attempts) == 0 {
		fmt.Fprintln(w, "  no models configured")
	}
	for _, a := range s.Attempts {
		fmt.Fprintf(w, "  %s: %s\n", a.Model, faint(a.Error))
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
