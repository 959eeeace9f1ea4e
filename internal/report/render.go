// Package report renders engine results as console tables. The engines
// themselves return plain structs; everything visual lives here.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"quotelake/internal/catalog"
	"quotelake/internal/crossval"
	"quotelake/internal/validation"
)

// RenderReport prints one symbol's check report.
func RenderReport(w io.Writer, r validation.Report) {
	fmt.Fprintf(w, "\n%s: %s\n", r.Symbol, strings.ToUpper(string(r.OverallStatus())))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Status", "Message"})
	table.SetAutoWrapText(false)
	for _, res := range r.Results {
		table.Append([]string{res.CheckName, string(res.Status), res.Message})
	}
	table.Render()
}

// RenderSummary prints a one-line-per-symbol validation overview. Symbols
// in noData had no queryable rows at all.
func RenderSummary(w io.Writer, reports []validation.Report, noData []string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Status", "Checks Passed", "Issues"})
	table.SetAutoWrapText(false)

	for _, r := range reports {
		passed := 0
		var issues []string
		for _, res := range r.Results {
			if res.Status == validation.StatusPass {
				passed++
			} else {
				issues = append(issues, res.CheckName)
			}
		}
		issueCol := "-"
		if len(issues) > 0 {
			issueCol = strings.Join(issues, ", ")
		}
		table.Append([]string{
			r.Symbol,
			strings.ToUpper(string(r.OverallStatus())),
			fmt.Sprintf("%d/%d", passed, len(r.Results)),
			issueCol,
		})
	}
	for _, symbol := range noData {
		table.Append([]string{symbol, "NO DATA", "-", "-"})
	}

	table.Render()
}

// RenderComparison prints a pairwise cross-source comparison.
func RenderComparison(w io.Writer, c crossval.Comparison) {
	fmt.Fprintf(w, "\n%s vs %s\n", c.SourceA, c.SourceB)
	if c.AdjustedSkipped {
		fmt.Fprintf(w, "  Note: adjusted_close comparison skipped (a source does not provide adjusted close)\n")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Common dates", fmt.Sprintf("%d", c.CommonDates)})
	table.Append([]string{fmt.Sprintf("Only in %s", c.SourceA), fmt.Sprintf("%d", c.OnlyA)})
	table.Append([]string{fmt.Sprintf("Only in %s", c.SourceB), fmt.Sprintf("%d", c.OnlyB)})

	for _, d := range c.Drift {
		if d.Compared == 0 {
			table.Append([]string{fmt.Sprintf("Max %s diff %%", d.Column), "-"})
			continue
		}
		table.Append([]string{fmt.Sprintf("Max %s diff %%", d.Column), fmt.Sprintf("%.4f%%", d.Max)})
		table.Append([]string{fmt.Sprintf("Avg %s diff %%", d.Column), fmt.Sprintf("%.4f%%", d.Mean)})
		table.Append([]string{fmt.Sprintf("P95 %s diff %%", d.Column), fmt.Sprintf("%.4f%%", d.P95)})
	}

	table.Append([]string{
		fmt.Sprintf("Dates > %g%% diff", c.Tolerance),
		fmt.Sprintf("%d", c.DatesOverTolerance),
	})
	table.Render()
}

// RenderMatrix prints the cross-source overlap matrix.
func RenderMatrix(w io.Writer, m crossval.MatrixReport) {
	header := []string{"Symbol"}
	for _, s := range m.Sources {
		header = append(header, fmt.Sprintf("%s rows", s))
	}
	header = append(header, "Date Overlap", "Max Close Diff %")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)

	for _, row := range m.Rows {
		line := []string{row.Symbol}
		for _, count := range row.RowCounts {
			line = append(line, fmt.Sprintf("%d", count))
		}
		if row.Comparable {
			line = append(line,
				fmt.Sprintf("%.1f%%", row.OverlapPct),
				fmt.Sprintf("%.3f%%", row.MaxCloseDiffPct),
			)
		} else {
			line = append(line, "-", "-")
		}
		table.Append(line)
	}

	table.Render()
}

// RenderInfo prints per-relation metadata.
func RenderInfo(w io.Writer, info []catalog.RelationInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"View", "Rows", "Columns", "Column Names"})
	table.SetAutoWrapText(false)

	for _, ri := range info {
		if ri.Err != "" {
			table.Append([]string{ri.Name, "ERROR", "", ri.Err})
			continue
		}
		table.Append([]string{
			ri.Name,
			fmt.Sprintf("%d", ri.Rows),
			fmt.Sprintf("%d", ri.Columns),
			strings.Join(ri.ColumnNames, ", "),
		})
	}

	table.Render()
}

// RenderTable prints a query result, truncated to limit rows when limit > 0.
func RenderTable(w io.Writer, t *catalog.Table, limit int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Columns)

	shown := len(t.Rows)
	if limit > 0 && shown > limit {
		shown = limit
	}

	for _, row := range t.Rows[:shown] {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = formatValue(v)
		}
		table.Append(line)
	}
	table.Render()

	if shown < len(t.Rows) {
		fmt.Fprintf(w, "... showing %d of %d rows\n", shown, len(t.Rows))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case float64:
		return fmt.Sprintf("%g", val)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
