package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agentx-labs/extkit/internal/pipeline"
	"github.com/agentx-labs/extkit/internal/stage"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func modeList(modes []pipeline.Mode) string {
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = "--" + string(m)
	}
	return strings.Join(parts, " ")
}

func printPlan(w io.Writer, plan pipeline.Plan) {
	fmt.Fprintln(w, headerStyle.Render("Plan for "+modeList(plan.Modes)))
	for i, s := range plan.Stages {
		line := fmt.Sprintf("%2d. %s", i+1, stepStyle.Render(string(s.Name)))
		line += "  " + hintStyle.Render(s.Title)
		if s.BestEffort {
			line += " " + hintStyle.Render("(best effort)")
		}
		fmt.Fprintln(w, line)
	}
}

// printError is the fang error handler. A failed stage is reported by name
// with its cause underneath; anything else goes to fang's default handler.
// Output to a file that is not a terminal is left unstyled.
func printError(w io.Writer, styles fang.Styles, err error) {
	if f, ok := w.(interface{ Fd() uintptr }); ok && !term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(w, "Error: "+err.Error())
		return
	}
	var se *pipeline.StageError
	if !errors.As(err, &se) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}
	fmt.Fprintln(w, errorStyle.Render("✗ "+string(se.Stage)+" failed"))
	fmt.Fprintln(w, "  "+se.Err.Error())
	fmt.Fprintln(w, hintStyle.Render("  rerun with --verbose for command output"))
}

func printReport(w io.Writer, report *pipeline.Report) {
	for _, warn := range report.Warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+warn.Error()))
	}
	names := make([]string, len(report.Completed))
	for i, n := range report.Completed {
		names[i] = string(n)
	}
	summary := fmt.Sprintf("Completed %d %s", len(report.Completed), plural(len(report.Completed), "stage"))
	if len(names) > 0 {
		summary += ": " + strings.Join(names, ", ")
	}
	fmt.Fprintln(w, okStyle.Render("✓")+" "+summary+" "+hintStyle.Render("(run "+report.RunID+")"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// stageNames is used by the plan command to list what each mode runs.
func stageNames(names []stage.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
