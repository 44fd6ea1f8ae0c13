package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor    = lipgloss.AdaptiveColor{Light: "#5A3E9B", Dark: "#B69CFF"}
	correctColor   = lipgloss.AdaptiveColor{Light: "#1E7B3A", Dark: "#5FD38D"}
	incorrectColor = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#FF7A70"}
	mutedColor     = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
	borderColor    = lipgloss.AdaptiveColor{Light: "#C8C8C8", Dark: "#444444"}
)

var (
	titleStyle           = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	scoreStyle           = lipgloss.NewStyle().Foreground(mutedColor)
	resultCorrectStyle   = lipgloss.NewStyle().Bold(true).Foreground(correctColor)
	resultIncorrectStyle = lipgloss.NewStyle().Bold(true).Foreground(incorrectColor)
	errorStyle           = lipgloss.NewStyle().Foreground(incorrectColor)
)

var artStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(borderColor).
	Padding(0, 2).
	Align(lipgloss.Center).
	Width(22)

var buttonStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(borderColor).
	Padding(0, 1).
	Width(36)

var correctButtonStyle = buttonStyle.
	BorderForeground(correctColor).
	Foreground(correctColor).
	Bold(true)

var incorrectButtonStyle = buttonStyle.
	BorderForeground(incorrectColor).
	Foreground(incorrectColor)

var disabledButtonStyle = buttonStyle.Foreground(mutedColor)

var statusBarStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	BorderStyle(lipgloss.NormalBorder()).
	BorderTop(true).
	BorderForeground(borderColor)
