package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. Empty rows render the placeholder
// instead of a header-only frame.
type tableSpec struct {
	title       string
	headers     []string
	aligns      []columnAlignment
	rows        [][]string
	placeholder string
}

func (s tableSpec) render() string {
	if len(s.headers) == 0 {
		return ""
	}
	if len(s.rows) == 0 && s.placeholder != "" {
		return s.placeholder
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if s.title != "" {
		tw.SetTitle(s.title)
	}
	tw.AppendHeader(toRow(s.headers, len(s.headers)))
	for _, row := range s.rows {
		tw.AppendRow(toRow(row, len(s.headers)))
	}

	configs := make([]table.ColumnConfig, len(s.headers))
	for i := range s.headers {
		align := text.AlignLeft
		if i < len(s.aligns) && s.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(values []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
