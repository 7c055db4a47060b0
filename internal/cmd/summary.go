package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/kipr/kipr-scratch/internal/build"
	"github.com/kipr/kipr-scratch/internal/codegen/ctypes"
	"github.com/kipr/kipr-scratch/internal/codegen/meta"
	"github.com/kipr/kipr-scratch/internal/patch"
)

// interactive reports whether summaries should be printed. Non-terminal
// stdout (CI logs, pipes) only gets the structured log records.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func renderSkipped(w io.Writer, skipped []meta.SkippedFunction) {
	if len(skipped) == 0 {
		return
	}
	data := make([][]string, 0, len(skipped))
	for _, s := range skipped {
		data = append(data, []string{s.Module, s.Function, s.Parameter, s.Type})
	}
	table := newTable(w, []string{"MODULE", "SKIPPED FUNCTION", "PARAMETER", "TYPE"})
	table.AppendBulk(data)
	table.Render()
	fmt.Fprintf(w, "\nSupported parameter types: %s\n", strings.Join(ctypes.Known(), ", "))
	fmt.Fprintln(w, "Functions taking any other parameter type get no block.")
}

func renderStages(w io.Writer, stages []build.StageResult) {
	data := make([][]string, 0, len(stages))
	for _, s := range stages {
		data = append(data, []string{s.Name, s.Duration.Round(time.Millisecond).String()})
	}
	table := newTable(w, []string{"STAGE", "DURATION"})
	table.AppendBulk(data)
	table.Render()
}

func renderPatched(w io.Writer, res *patch.Result) {
	data := make([][]string, 0, len(res.Files))
	for _, f := range res.Files {
		data = append(data, []string{f.Path, f.Digest[:16]})
	}
	table := newTable(w, []string{"FILE", "BLAKE2B"})
	table.AppendBulk(data)
	table.Render()
}
