package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#00ff9f")
	dimColor     = lipgloss.Color("#6e7681")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	labelStyle = lipgloss.NewStyle().Foreground(dimColor).Width(22)
	valueStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

type field struct {
	Label string
	Value string
}

func floatField(label string, value float64) field {
	return field{Label: label, Value: fmt.Sprintf("%.4f", value)}
}

// renderReport draws a titled box of label/value rows.
func renderReport(title string, fields []field) string {
	lines := []string{titleStyle.Render(title), ""}
	for _, f := range fields {
		lines = append(lines, labelStyle.Render(f.Label)+valueStyle.Render(f.Value))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderTable draws a box with one column per entry.
func renderTable(title string, header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	format := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Width(widths[i] + 2).Render(cell)
		}
		return strings.Join(parts, "")
	}
	lines := []string{titleStyle.Render(title), "", format(header, labelStyle.UnsetWidth())}
	for _, row := range rows {
		lines = append(lines, format(row, valueStyle))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
