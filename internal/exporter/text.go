package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteText renders the report as tab separated text.
func WriteText(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	line := func(parts ...string) {
		for _, p := range parts {
			bw.WriteString(p)
		}
		bw.WriteByte('\n')
	}

	line(ReportTitle)
	line("Generated\t", r.Generated.Format(TextDateLayout))
	line("Dictionary\t", r.Dictionary)
	line("Columns Used\t", r.Columns)
	line()
	line(ProgramNotice)
	line(ProgramURL)
	line()
	line(PledgeNotice)
	line(PledgeURL)

	for _, s := range r.Sections {
		line()
		line(s.Title)
		line(strings.Repeat("-", len(s.Title)))
		percent := ""
		if s.Percent {
			percent = "Percent"
		}
		line("\tItem\t\tTotal\t\t", percent, "\t\tComments")

		for _, row := range s.Rows {
			switch row.Kind {
			case RowBlank:
				line()
			case RowCount:
				line("\t", row.Item, "\t\t", fmt.Sprint(row.Count), "\t\t\t\t", row.Comment)
			case RowPercent:
				line("\t", row.Item, "\t\t", fmt.Sprint(row.Count), "\t\t", FormatPercent(row.Percentage), "\t\t", row.Comment)
			case RowFractional:
				line("\t", row.Item, "\t\t", fmt.Sprintf("%.1f", row.Total), "\t\t\t\t", row.Comment)
			}
		}
	}
	return bw.Flush()
}

// FormatPercent renders a ratio with one decimal, 0.5 as "50.0%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
