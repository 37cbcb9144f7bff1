package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkarslan/wordsprint/internal/export"
	"github.com/mkarslan/wordsprint/internal/session"
)

// App is the root Bubble Tea model.
type App struct {
	sess   *session.Session
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	entries   entriesModel
	settings  settingsModel
	account   accountModel

	st     styles
	help   help.Model
	status string
}

func NewApp(sess *session.Session) App {
	h := help.New()
	h.ShowAll = false

	return App{
		sess:       sess,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(sess),
		entries:    newEntriesModel(sess),
		settings:   newSettingsModel(sess),
		account:    newAccountModel(sess),
		st:         newStyles(sess.Theme()),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.entries.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.account.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (form, text field), delegate.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewEntries
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewAccount
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, nil
		}

	case StatusMsg:
		a.status = string(msg)
		return a, nil

	case StateChangedMsg:
		a.st = newStyles(a.sess.Theme())
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.st = newStyles(a.sess.Theme())
		return a, nil

	case signedInMsg:
		a.status = "Signed in as " + a.sess.UserID()
		return a, nil

	case refreshedMsg:
		a.status = "Refreshed from server"
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewEntries:
		a.entries, cmd = a.entries.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	case viewAccount:
		a.account, cmd = a.account.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive()
	case viewEntries:
		return a.entries.formActive()
	case viewSettings:
		return a.settings.formActive || a.settings.confirmReset
	case viewAccount:
		return a.account.formActive()
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view(a.st)
	case viewEntries:
		content = a.entries.view(a.st)
	case viewSettings:
		content = a.settings.view(a.st)
	case viewAccount:
		content = a.account.view(a.st)
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, a.st.activeTab.Render(name))
		} else {
			tabs = append(tabs, a.st.inactiveTab.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(a.st.pal.primary).Render("wordsprint")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return a.st.header.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = a.st.muted.Render(" " + a.status)
	}

	modeInfo := a.st.muted.Render(" [" + string(a.sess.Mode()) + "]")
	if a.sess.Mode() == session.ModeCloud && a.sess.UserID() == "" {
		modeInfo = a.st.warning.Render(" [cloud: signed out]")
	}

	left := a.st.footer.Render(helpView)
	right := status + modeInfo

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := a.st.title.Render("Export Format")
	formats := []string{"JSON", "CSV"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := a.st.normalItem
		if i == a.exportCursor {
			cursor = "> "
			style = a.st.selectedItem
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, a.st.muted.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return a.st.activePanel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		home, _ := os.UserHomeDir()
		payload := a.sess.Export()

		var path string
		if format == 0 {
			path = filepath.Join(home, export.FileName(payload.Meta.Mode))
			if err := export.ToJSON(payload, path); err != nil {
				return errStatus(err)
			}
		} else {
			name := strings.TrimSuffix(export.FileName(payload.Meta.Mode), ".json") + ".csv"
			path = filepath.Join(home, name)
			if err := export.ToCSV(payload.Project, payload.Entries, path); err != nil {
				return errStatus(err)
			}
		}
		return exportDoneMsg{path: path}
	}
}
