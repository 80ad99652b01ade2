package dashboard

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	subject    lipgloss.Style
	detail     lipgloss.Style
	success    lipgloss.Style
	warning    lipgloss.Style
	expired    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	badge      lipgloss.Style
	badgeQuiet lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	author     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		subject:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		success:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		expired:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		badge:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("161")).Padding(0, 1),
		badgeQuiet: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		author:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
