package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(green)
	mutedStyle   = lipgloss.NewStyle().Foreground(dim)
)

// heading renders a section title followed by a newline.
func heading(format string, a ...any) string {
	return headingStyle.Render(fmt.Sprintf(format, a...)) + "\n"
}

func muted(s string) string { return mutedStyle.Render(s) }

func successMsg(format string, a ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

// renderTable renders rows under headers with rounded borders.
func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddStyle := cellStyle.Foreground(dim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return cellStyle
			default:
				return oddStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}
