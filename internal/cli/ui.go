package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleKey = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess writes a success line to w.
func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

// printInfo writes a status line to w.
func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail writes an indented dim line to w.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile writes a line announcing an output file.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// =============================================================================
// Report Fragments
// =============================================================================

// keyValue renders a labeled value.
func keyValue(key, value string) string {
	return styleKey.Render(key) + " " + StyleValue.Render(value)
}

// statsLine renders graph statistics on a single line.
func statsLine(nodeCount, edgeCount int, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d edges", edgeCount),
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(statusStyle.Render(status))
	return b.String()
}

// logLine renders a report log entry with its time and severity icon.
func logLine(entry deadlock.LogEntry) string {
	icon, style := iconInfo, styleIconInfo
	switch entry.Severity {
	case deadlock.SeveritySuccess:
		icon, style = iconSuccess, styleIconSuccess
	case deadlock.SeverityWarning:
		icon, style = iconWarning, styleIconWarning
	case deadlock.SeverityError:
		icon, style = iconError, styleIconError
	}
	ts := time.UnixMilli(entry.Timestamp).Format("15:04:05.000")
	return StyleDim.Render(ts) + " " + style.Render(icon) + " " + entry.Message
}
