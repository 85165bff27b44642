// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple - used for titles and project names.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray - used for subtitles and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green - used for success states and matches.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red - used for errors and failures.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber - used for warnings and unmatched paths.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue - used for commands, paths and patterns.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for command names, paths and patterns.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// projectStyle is for project names in listings.
	projectStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// tableHeaderStyle is for the header row of project tables.
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorMuted).
				Padding(0, 1)

	// tableCellStyle pads project table cells.
	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

const (
	successIcon = "✓"
	errorIcon   = "✗"
	infoIcon    = "•"
)
