package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"PaperCrawler/internal/domain"
)

const maxCellWidth = 60

// writeTable prints rows as left-aligned columns. Widths are measured in
// terminal cells so CJK text lines up.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	all := append([][]string{header}, rows...)
	for i, row := range all {
		for j, cell := range row {
			cell = runewidth.Truncate(cell, maxCellWidth, "…")
			all[i][j] = cell
			if cw := runewidth.StringWidth(cell); cw > widths[j] {
				widths[j] = cw
			}
		}
	}

	for _, row := range all {
		cells := make([]string, len(row))
		for j, cell := range row {
			if j == len(row)-1 {
				cells[j] = cell
				continue
			}
			cells[j] = runewidth.FillRight(cell, widths[j])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func printReport(w io.Writer, report domain.Report) {
	if len(report.Years) == 0 {
		fmt.Fprintln(w, "no years crawled")
		return
	}

	rows := make([][]string, 0, len(report.Years))
	for _, y := range report.Years {
		note := y.URL
		if y.Err != nil {
			note = y.Err.Error()
		}
		rows = append(rows, []string{strconv.Itoa(y.Year), string(y.Status), strconv.Itoa(y.Records), note})
	}
	writeTable(w, []string{"YEAR", "STATUS", "RECORDS", "DETAIL"}, rows)

	fmt.Fprintf(w, "%d record(s), %d year(s) done, %d skipped, %d resumed, %d failed in %s\n",
		report.Records(),
		report.Count(domain.StatusDone),
		report.Count(domain.StatusSkipped),
		report.Count(domain.StatusResumed),
		report.Count(domain.StatusFailed),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}

func printCheckpoints(w io.Writer, cps []domain.Checkpoint) {
	if len(cps) == 0 {
		fmt.Fprintln(w, "no completed years")
		return
	}
	rows := make([][]string, 0, len(cps))
	for _, cp := range cps {
		rows = append(rows, []string{strconv.Itoa(cp.Year), strconv.Itoa(cp.Records), cp.CompletedAt.Format("2006-01-02 15:04:05")})
	}
	writeTable(w, []string{"YEAR", "RECORDS", "COMPLETED"}, rows)
}
