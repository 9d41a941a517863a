package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sqldrift/sqldrift/internal/report"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D9FF")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF88")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB800")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
)

func printSummary(r *report.Report, outputPath string, statements int) {
	fmt.Println(titleStyle.Render("sqldrift"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("  source  %s (%d tables)", r.Source.Name, r.Source.Tables)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("  target  %s (%d tables)", r.Target.Name, r.Target.Tables)))
	fmt.Println()

	if r.InSync {
		fmt.Println(successStyle.Render("✓ schemas are in sync"))
		fmt.Println(dimStyle.Render(fmt.Sprintf("  empty migration written to %s", outputPath)))
		return
	}

	for _, tc := range r.Tables {
		line := fmt.Sprintf("%s %s", changeMarker(tc.Change), tc.Name)
		if len(tc.Details) > 0 {
			line += dimStyle.Render(fmt.Sprintf(" (%s)", strings.Join(tc.Details, ", ")))
		}
		fmt.Println(line)
	}
	fmt.Println()

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ %d %s written to %s",
		statements, plural(statements, "statement"), outputPath)))
}

func changeMarker(change string) string {
	switch change {
	case "create":
		return successStyle.Render("+")
	case "drop":
		return errorStyle.Render("-")
	default:
		return warnStyle.Render("~")
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
