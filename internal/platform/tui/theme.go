package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme contains all configurable visual styles of the player.
type Theme struct {
	// Board tiles
	Empty      lipgloss.Style
	Obstacle   lipgloss.Style
	Start      lipgloss.Style
	End        lipgloss.Style
	Teleporter lipgloss.Style
	Coin       lipgloss.Style
	Key        lipgloss.Style
	Gate       lipgloss.Style

	// Tools and the collector
	Tool          lipgloss.Style
	ForceTile     lipgloss.Style
	Collector     lipgloss.Style
	CollectorWarp lipgloss.Style // while teleporting
	Cursor        lipgloss.Style
	BoardBorder   lipgloss.Style

	// HUD styles
	HUDTitle     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style
	HUDSelected  lipgloss.Style

	// Overlay styles
	OverlayWin  lipgloss.Style
	OverlayFail lipgloss.Style
	OverlayText lipgloss.Style

	// Level picker styles
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		Empty:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")), // Dark gray
		Obstacle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
		Start:      lipgloss.NewStyle().Foreground(lipgloss.Color("46")),  // Lime green
		End:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // Red
		Teleporter: lipgloss.NewStyle().Foreground(lipgloss.Color("135")), // Medium purple
		Coin:       lipgloss.NewStyle().Foreground(lipgloss.Color("226")), // Bright yellow
		Key:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // Orange
		Gate:       lipgloss.NewStyle().Foreground(lipgloss.Color("130")).Bold(true),

		Tool:          lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true), // Bright cyan
		ForceTile:     lipgloss.NewStyle().Foreground(lipgloss.Color("205")),           // Hot pink
		Collector:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		CollectorWarp: lipgloss.NewStyle().Foreground(lipgloss.Color("171")).Blink(true),
		Cursor:        lipgloss.NewStyle().Reverse(true),
		BoardBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),

		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HUDSelected:  lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),

		OverlayWin:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		OverlayFail: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		OverlayText: lipgloss.NewStyle().Foreground(lipgloss.Color("255")),

		MenuTitle:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		MenuItemNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MenuItemActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		MenuDescription: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// MonochromeTheme returns a grayscale theme for terminals without color.
func MonochromeTheme() Theme {
	theme := DefaultTheme()
	theme.Start = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	theme.End = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	theme.Teleporter = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	theme.Coin = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	theme.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Underline(true)
	theme.Tool = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	theme.ForceTile = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	theme.CollectorWarp = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Blink(true)
	return theme
}
