package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// RenderTable formats generic row maps as an aligned text table. Columns are
// the union of all keys, sorted, so ragged rows still line up.
func RenderTable(rows []map[string]any) string {
	if len(rows) == 0 {
		return ""
	}

	seen := map[string]bool{}
	var headers []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := row[h]; ok && v != nil {
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		table.Append(cells)
	}
	table.Render()
	return b.String()
}
