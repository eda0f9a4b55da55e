package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconPending = "·"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints one written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Run Summary
// =============================================================================

// runStatsLine renders the one-line summary of a finished run.
func runStatsLine(res *pipeline.Result) string {
	parts := []string{
		fmt.Sprintf("%d nodes", res.Stats.NodeCount),
		fmt.Sprintf("%d edges", res.Stats.EdgeCount),
		fmt.Sprintf("%d layouts", res.Stats.LayoutCount),
	}
	if res.Stats.FrameCount > 0 {
		parts = append(parts, fmt.Sprintf("%d frames", res.Stats.FrameCount))
	}

	cached := fmt.Sprintf("%d/%d cached", res.CacheInfo.LayoutHits, res.Stats.LayoutCount)
	if res.CacheInfo.LayoutHits > 0 {
		parts = append(parts, styleCached.Render(cached))
	} else {
		parts = append(parts, styleComputed.Render(cached))
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(p))
	}
	return b.String()
}

// printRunStats prints the summary line and the per-stage timings.
func printRunStats(res *pipeline.Result) {
	fmt.Println(runStatsLine(res))
	s := res.Stats
	printDetail("build %s · layout %s · unify %s · render %s",
		s.BuildTime.Round(1e6), s.LayoutTime.Round(1e6), s.UnifyTime.Round(1e6), s.RenderTime.Round(1e6))
}

// =============================================================================
// Tables
// =============================================================================

// renderTable draws a rounded lipgloss table with a dim border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// moduleCounts renders "name (n)" pairs sorted by module name.
func moduleCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s (%d)", n, counts[n])
	}
	return strings.Join(parts, ", ")
}
