package view

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	outputStyle  = lipgloss.NewStyle().PaddingLeft(2)
)

func statusMark(s entity.SubtaskStatus) string {
	switch s {
	case entity.SubtaskCompleted:
		return "✓"
	case entity.SubtaskActive:
		return "▶"
	default:
		return "○"
	}
}

func statusStyle(s entity.SubtaskStatus) lipgloss.Style {
	switch s {
	case entity.SubtaskCompleted:
		return doneStyle
	case entity.SubtaskActive:
		return activeStyle
	default:
		return pendingStyle
	}
}
