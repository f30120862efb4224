package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all user-facing status lines. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette & Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh       = lipgloss.NewStyle().Foreground(colorGray)

	// Node change markers, shared with the result browser.
	styleAdded    = lipgloss.NewStyle().Foreground(colorGreen)
	styleDeleted  = lipgloss.NewStyle().Foreground(colorRed)
	styleModified = lipgloss.NewStyle().Foreground(colorYellow)
)

// statusIcon pairs a glyph with its color.
type statusIcon struct {
	glyph string
	style lipgloss.Style
}

func (i statusIcon) render() string { return i.style.Render(i.glyph) }

var (
	iconSuccess = statusIcon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconError   = statusIcon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarning = statusIcon{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	iconInfo    = statusIcon{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

const (
	markAdded   = "+"
	markDeleted = "-"
	markChanged = "~"
)

// =============================================================================
// Printers
// =============================================================================

func printLine(s string) {
	fmt.Fprintln(stdout, s)
}

func printStatus(icon statusIcon, msg string) {
	printLine(icon.render() + " " + msg)
}

func printSuccess(format string, args ...any) {
	printStatus(iconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(iconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	printLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written output file.
func printFile(path string) {
	printLine("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	printLine(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats summarizes a run: node and transition totals, then whether
// any diagram came from the cache. Zero counts are omitted.
func printStats(nodeCount, transitionCount int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if transitionCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d transitions", transitionCount)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	printLine("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printChanges prints the added, deleted and modified node counts of one flow.
func printChanges(path string, added, deleted, modified int) {
	printLine(fmt.Sprintf("  %s %s %s %s",
		StyleValue.Render(path),
		styleAdded.Render(fmt.Sprintf("%s%d", markAdded, added)),
		styleDeleted.Render(fmt.Sprintf("%s%d", markDeleted, deleted)),
		styleModified.Render(fmt.Sprintf("%s%d", markChanged, modified))))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	printLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	printLine("")
}
