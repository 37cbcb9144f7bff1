package tui

import "github.com/charmbracelet/lipgloss"

// palette is the per-theme color set.
type palette struct {
	primary   lipgloss.Color
	accent    lipgloss.Color
	muted     lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	errc      lipgloss.Color
	fg        lipgloss.Color
	subtle    lipgloss.Color
	highlight lipgloss.Color
}

var palettes = map[string]palette{
	"spruce": {
		primary:   lipgloss.Color("#2EC4B6"),
		accent:    lipgloss.Color("#FF6B6B"),
		muted:     lipgloss.Color("#666666"),
		success:   lipgloss.Color("#2ECC71"),
		warning:   lipgloss.Color("#F39C12"),
		errc:      lipgloss.Color("#E74C3C"),
		fg:        lipgloss.Color("#C0CAF5"),
		subtle:    lipgloss.Color("#414868"),
		highlight: lipgloss.Color("#7AA2F7"),
	},
	"midnight": {
		primary:   lipgloss.Color("#6C63FF"),
		accent:    lipgloss.Color("#FF79C6"),
		muted:     lipgloss.Color("#565F89"),
		success:   lipgloss.Color("#9ECE6A"),
		warning:   lipgloss.Color("#E0AF68"),
		errc:      lipgloss.Color("#F7768E"),
		fg:        lipgloss.Color("#A9B1D6"),
		subtle:    lipgloss.Color("#3B4261"),
		highlight: lipgloss.Color("#BB9AF7"),
	},
	"sunset": {
		primary:   lipgloss.Color("#F97316"),
		accent:    lipgloss.Color("#EC4899"),
		muted:     lipgloss.Color("#78716C"),
		success:   lipgloss.Color("#84CC16"),
		warning:   lipgloss.Color("#FACC15"),
		errc:      lipgloss.Color("#EF4444"),
		fg:        lipgloss.Color("#FAFAF9"),
		subtle:    lipgloss.Color("#57534E"),
		highlight: lipgloss.Color("#FDBA74"),
	},
}

// styles holds every rendered style for the active theme.
type styles struct {
	pal palette

	activeTab   lipgloss.Style
	inactiveTab lipgloss.Style

	panel       lipgloss.Style
	activePanel lipgloss.Style

	banner lipgloss.Style

	title     lipgloss.Style
	subtitle  lipgloss.Style
	accent    lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	errStyle  lipgloss.Style
	muted     lipgloss.Style
	highlight lipgloss.Style

	header lipgloss.Style
	footer lipgloss.Style

	selectedItem lipgloss.Style
	normalItem   lipgloss.Style
}

func newStyles(theme string) styles {
	pal, ok := palettes[theme]
	if !ok {
		pal = palettes["spruce"]
	}
	return styles{
		pal: pal,

		activeTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(pal.primary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(pal.primary).
			Padding(0, 2),

		inactiveTab: lipgloss.NewStyle().
			Foreground(pal.muted).
			Padding(0, 2),

		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.subtle).
			Padding(1, 2),

		activePanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.primary).
			Padding(1, 2),

		banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(pal.primary),

		title:     lipgloss.NewStyle().Bold(true).Foreground(pal.fg),
		subtitle:  lipgloss.NewStyle().Foreground(pal.muted),
		accent:    lipgloss.NewStyle().Foreground(pal.accent),
		success:   lipgloss.NewStyle().Foreground(pal.success),
		warning:   lipgloss.NewStyle().Foreground(pal.warning),
		errStyle:  lipgloss.NewStyle().Foreground(pal.errc),
		muted:     lipgloss.NewStyle().Foreground(pal.muted),
		highlight: lipgloss.NewStyle().Foreground(pal.highlight),

		header: lipgloss.NewStyle().Padding(0, 1),
		footer: lipgloss.NewStyle().Foreground(pal.muted).Padding(0, 1),

		selectedItem: lipgloss.NewStyle().Foreground(pal.primary).Bold(true),
		normalItem:   lipgloss.NewStyle().Foreground(pal.fg),
	}
}
