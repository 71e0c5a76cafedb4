// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"}

	// Unfocused borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#696969"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#C98A00", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Drag feedback
	ShadowColor  = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#54A0FF"}
	GrabbedColor = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	ItemStyle      = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	ItemMutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)
	GrabbedStyle   = lipgloss.NewStyle().Foreground(GrabbedColor).Bold(true)
	ShadowStyle    = lipgloss.NewStyle().Foreground(ShadowColor)
	EmptyStyle     = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true).Padding(1, 2)

	StatusBarStyle     = lipgloss.NewStyle().Foreground(TextSecondaryColor).Padding(0, 1)
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	StatusWarningStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)
	StatusErrorStyle   = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
)
