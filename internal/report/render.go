package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Renderer palette. The color codes live here so the renderer stays a pure
// function of its input; nothing mutates these at runtime.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	healthyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const (
	reportTitle = "Model Quotas"

	headerModel = "MODEL"
	headerUsage = "USAGE"
	headerLimit = "LIMIT"
	headerReset = "RESET"

	barWidth    = 10
	filledGlyph = "█"
	emptyGlyph  = "░"

	// usage column is visually fixed: bar, space, right-justified "NNN%"
	usageWidth = barWidth + 1 + 4

	columnGap = "  "
)

// tierStyle picks the color tier shared by the percent text and the filled
// part of the bar. Thresholds are on remaining quota.
func tierStyle(percent int) lipgloss.Style {
	switch {
	case percent <= 10:
		return alertStyle
	case percent <= 30:
		return warnStyle
	default:
		return healthyStyle
	}
}

// barFilled returns how many of the bar's glyphs are filled for a percent.
func barFilled(percent int) int {
	return int(float64(percent)/100*barWidth + 0.5)
}

func renderBar(percent int) string {
	filled := barFilled(percent)
	return tierStyle(percent).Render(strings.Repeat(filledGlyph, filled)) +
		emptyStyle.Render(strings.Repeat(emptyGlyph, barWidth-filled))
}

func resetStyle(reset string) lipgloss.Style {
	if reset == "-" || reset == "Ready" {
		return neutralStyle
	}
	return accentStyle
}

// Render lays out the grouped models as an aligned table. Pure formatting,
// no I/O; callers must not pass an entirely empty grouping.
func Render(g Grouped) string {
	nameW := lipgloss.Width(headerModel)
	limitW := lipgloss.Width(headerLimit)
	resetW := lipgloss.Width(headerReset)
	for _, m := range g.All() {
		nameW = maxInt(nameW, lipgloss.Width(m.Name))
		limitW = maxInt(limitW, lipgloss.Width(m.Limit))
		resetW = maxInt(resetW, lipgloss.Width(m.Reset))
	}

	// icon column (glyph + space) + the four padded columns
	totalW := 2 + nameW + len(columnGap) + usageWidth + len(columnGap) + limitW + len(columnGap) + resetW
	rule := neutralStyle.Render(strings.Repeat("─", totalW))

	var b strings.Builder
	b.WriteString(titleStyle.Render(reportTitle) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(renderHeader(nameW, limitW, resetW) + "\n")
	b.WriteString(rule + "\n")

	previous := false
	for _, bucket := range g.Buckets() {
		if len(bucket.Models) == 0 {
			continue
		}
		if previous {
			b.WriteString("\n")
		}
		for _, m := range bucket.Models {
			b.WriteString(renderRow(m, nameW, limitW, resetW) + "\n")
		}
		previous = true
	}

	b.WriteString(rule)
	return b.String()
}

func renderHeader(nameW, limitW, resetW int) string {
	return "  " +
		pad(headerModel, nameW) + columnGap +
		pad(headerUsage, usageWidth) + columnGap +
		pad(headerLimit, limitW) + columnGap +
		padLeft(headerReset, resetW)
}

func renderRow(m Model, nameW, limitW, resetW int) string {
	percent := fmt.Sprintf("%3d%%", m.Percent)
	usage := renderBar(m.Percent) + " " + tierStyle(m.Percent).Render(percent)

	return m.Icon + " " +
		pad(m.Name, nameW) + columnGap +
		usage + columnGap +
		pad(m.Limit, limitW) + columnGap +
		strings.Repeat(" ", resetW-lipgloss.Width(m.Reset)) + resetStyle(m.Reset).Render(m.Reset)
}

// pad left-aligns plain text into a fixed-width column. Padding happens
// before styling so ANSI sequences never skew the layout.
func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

func padLeft(s string, width int) string {
	return strings.Repeat(" ", width-lipgloss.Width(s)) + s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
