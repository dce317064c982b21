package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/roach88/plenar/internal/loader"
)

// Status marks, colored unless color.NoColor is set.
func okMark() string   { return color.New(color.FgGreen).Sprint("✓") }
func warnMark() string { return color.New(color.FgYellow).Sprint("!") }
func failMark() string { return color.New(color.FgRed).Sprint("✗") }

// renderReport prints one loader report as a status line followed by
// its skips.
func renderReport(w io.Writer, rep *loader.Report, verbose bool) {
	mark := okMark()
	switch {
	case rep.HasFailures():
		mark = failMark()
	case len(rep.Skips) > 0:
		mark = warnMark()
	}

	fmt.Fprintf(w, "%s %-12s files %s", mark, rep.Entity, humanize.Comma(int64(rep.Files)))
	if rep.FilesSkipped > 0 {
		fmt.Fprintf(w, " (%s skipped)", humanize.Comma(int64(rep.FilesSkipped)))
	}
	fmt.Fprintf(w, ", inserted %s, duplicates %s",
		humanize.Comma(int64(rep.Inserted)), humanize.Comma(int64(rep.Duplicates)))
	if rep.RecordsSkipped > 0 {
		fmt.Fprintf(w, ", skipped %s", humanize.Comma(int64(rep.RecordsSkipped)))
	}
	if rep.RecordsFailed > 0 {
		fmt.Fprintf(w, ", %s", color.New(color.FgRed).Sprintf("failed %s", humanize.Comma(int64(rep.RecordsFailed))))
	}
	if rep.Backfilled > 0 {
		fmt.Fprintf(w, ", backfilled %s", humanize.Comma(rep.Backfilled))
	}
	fmt.Fprintf(w, " in %s\n", rep.Elapsed.Round(time.Millisecond))

	if verbose {
		fmt.Fprintf(w, "  run %s\n", rep.RunID)
	}
	for _, s := range rep.Skips {
		m := warnMark()
		if s.Failed {
			m = failMark()
		}
		fmt.Fprintf(w, "  %s %s\n", m, s.Error())
	}
}

// renderReports prints every report and a totals line.
func renderReports(w io.Writer, reports []*loader.Report, verbose bool) {
	var inserted, failed int
	for _, rep := range reports {
		renderReport(w, rep, verbose)
		inserted += rep.Inserted
		failed += rep.RecordsFailed
	}
	if len(reports) > 1 {
		fmt.Fprintf(w, "%s rows inserted across %d loaders", humanize.Comma(int64(inserted)), len(reports))
		if failed > 0 {
			fmt.Fprintf(w, ", %s", color.New(color.FgRed).Sprintf("%s failed", humanize.Comma(int64(failed))))
		}
		fmt.Fprintln(w)
	}
}
