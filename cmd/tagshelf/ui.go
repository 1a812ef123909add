package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#959595"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	primaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1"))

	// Folder headings in result listings
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	// Count badges such as "(3)"
	badgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D08770"))
)

func errorText(s string) string   { return errorStyle.Render(s) }
func warningText(s string) string { return warningStyle.Render(s) }
func infoText(s string) string    { return infoStyle.Render(s) }
func successText(s string) string { return successStyle.Render(s) }
func primaryText(s string) string { return primaryStyle.Render(s) }
func headerText(s string) string  { return headerStyle.Render(s) }
func badgeText(s string) string   { return badgeStyle.Render(s) }
