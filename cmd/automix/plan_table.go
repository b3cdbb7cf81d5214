package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// planColumn describes one column of a plan table. Numeric columns are right
// aligned.
type planColumn struct {
	title   string
	numeric bool
}

// planTable renders plan output. Repeated cells in merge columns, such as a
// part name spanning its clips, are printed once.
type planTable struct {
	columns []planColumn
	merge   map[int]bool
	rows    [][]string
}

func newPlanTable(columns ...planColumn) *planTable {
	return &planTable{columns: columns, merge: map[int]bool{}}
}

// mergeColumns marks columns (0-based) whose repeated values collapse.
func (t *planTable) mergeColumns(indexes ...int) *planTable {
	for _, i := range indexes {
		t.merge[i] = true
	}
	return t
}

func (t *planTable) append(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *planTable) render() string {
	if len(t.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(t.columns))
	configs := make([]table.ColumnConfig, len(t.columns))
	for i, col := range t.columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AutoMerge:   t.merge[i],
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range t.rows {
		row := make(table.Row, len(t.columns))
		for i := range row {
			if i < len(cells) {
				row[i] = cells[i]
			} else {
				row[i] = ""
			}
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}
