// Package static renders non-interactive output such as the status,
// registry and history tables.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// emptyCell stands in for cells without a value.
const emptyCell = "-"

// RenderTable renders rows under headers with aligned columns and no
// borders. Short rows are padded and empty cells show "-". No rows render
// as an empty string.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Headers(headers...).
		Rows(normalizeRows(len(headers), rows)...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle()
			if col < len(headers)-1 {
				style = style.PaddingRight(2)
			}
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func normalizeRows(width int, rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, max(width, len(row)))
		for j := range cells {
			if j < len(row) && strings.TrimSpace(row[j]) != "" {
				cells[j] = row[j]
			} else {
				cells[j] = emptyCell
			}
		}
		out[i] = cells
	}
	return out
}
