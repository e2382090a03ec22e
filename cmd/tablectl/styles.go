package main

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#10B981")
	warnColor    = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#94A3B8")
	bgDark       = lipgloss.Color("#0F172A")
)

var (
	appStyle = lipgloss.NewStyle().
			Background(bgDark).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	stateFreeStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	stateSharedStyle    = lipgloss.NewStyle().Foreground(accentColor)
	stateExclusiveStyle = lipgloss.NewStyle().Foreground(warnColor).Bold(true)

	deadlockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Foreground(errorColor).
			Padding(0, 1).
			MarginTop(1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)
