package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	metricStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func renderReport(results []result, styled bool) string {
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(render(titleStyle, "slicewalk"))
	b.WriteString("\n\n")
	for _, r := range results {
		b.WriteString(renderResult(r, render))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderResult(r result, render func(lipgloss.Style, string) string) string {
	name := render(nameStyle, fmt.Sprintf("%-22s", r.w.Name))
	if r.err != nil {
		return name + " " + render(errorStyle, r.err.Error())
	}
	metrics := fmt.Sprintf("%-6s %-6s %8s %12s elems %12s/op  sum=%d",
		r.w.Backing, r.w.Layout, humanize.IBytes(r.bytes), humanize.Comma(int64(r.visited)),
		r.perIteration(), r.checksum)
	return name + " " + render(metricStyle, metrics) +
		render(helpStyle, fmt.Sprintf("  (%d iterations)", r.w.Iterations))
}
