package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkarslan/wordsprint/internal/dates"
	"github.com/mkarslan/wordsprint/internal/localstore"
	"github.com/mkarslan/wordsprint/internal/progress"
	"github.com/mkarslan/wordsprint/internal/session"
)

type settingsModel struct {
	sess   *session.Session
	width  int
	height int

	formActive bool
	form       *huh.Form

	confirmReset bool

	// Form values as pointers (survive value copies)
	name     *string
	goal     *string
	start    *string
	end      *string
	baseline *string
	theme    *string
	timeWarp *string
}

func newSettingsModel(sess *session.Session) settingsModel {
	n, g, st, en, b, th, tw := "", "", "", "", "", "", ""
	return settingsModel{
		sess:     sess,
		name:     &n,
		goal:     &g,
		start:    &st,
		end:      &en,
		baseline: &b,
		theme:    &th,
		timeWarp: &tw,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	if s.confirmReset {
		switch keyMsg.String() {
		case "y", "Y":
			s.confirmReset = false
			if err := s.sess.ResetAll(context.Background()); err != nil {
				return s, func() tea.Msg { return errStatus(err) }
			}
			return s, func() tea.Msg { return statusMsg{text: "Tracker reset"} }
		default:
			s.confirmReset = false
		}
		return s, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Enter):
		return s.showForm()
	case keyMsg.String() == "R":
		s.confirmReset = true
		return s, nil
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	p := s.sess.Project()
	*s.name = p.Name
	*s.goal = strconv.Itoa(p.GoalWords)
	*s.start = p.StartDate
	*s.end = p.EndDate
	*s.baseline = strconv.Itoa(p.BaselineWords)
	*s.theme = s.sess.Theme()
	*s.timeWarp = s.sess.TimeWarp()

	themeOpts := make([]huh.Option[string], len(localstore.Themes))
	for i, t := range localstore.Themes {
		themeOpts[i] = huh.NewOption(t, t)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project name").Value(s.name),
			huh.NewInput().Title("Goal (words)").Value(s.goal),
			huh.NewInput().Title("Start date (YYYY-MM-DD)").Value(s.start),
			huh.NewInput().Title("End date (YYYY-MM-DD)").Value(s.end),
			huh.NewInput().Title("Starting count (words already written)").Value(s.baseline),
		).Title("Sprint"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").Options(themeOpts...).Value(s.theme),
			huh.NewInput().Title("Time warp (YYYY-MM-DD, empty = today)").Value(s.timeWarp),
		).Title("Preferences"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save()
	}

	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	goal, err := strconv.Atoi(strings.TrimSpace(*s.goal))
	if err != nil {
		return func() tea.Msg { return statusMsg{text: "Goal must be a number", isError: true} }
	}
	baseline, err := strconv.Atoi(strings.TrimSpace(*s.baseline))
	if err != nil {
		return func() tea.Msg { return statusMsg{text: "Starting count must be a number", isError: true} }
	}

	p := progress.Project{
		Name:          strings.TrimSpace(*s.name),
		GoalWords:     goal,
		StartDate:     strings.TrimSpace(*s.start),
		EndDate:       strings.TrimSpace(*s.end),
		BaselineWords: baseline,
	}
	if err := s.sess.SaveSettings(context.Background(), p); err != nil {
		return func() tea.Msg { return errStatus(err) }
	}
	if err := s.sess.SetTheme(*s.theme); err != nil {
		return func() tea.Msg { return errStatus(err) }
	}
	if err := s.sess.SetTimeWarp(strings.TrimSpace(*s.timeWarp)); err != nil {
		return func() tea.Msg { return errStatus(err) }
	}
	return func() tea.Msg { return statusMsg{text: "Settings saved"} }
}

func (s settingsModel) view(st styles) string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := st.title.Render("Settings")
		return st.panel.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	if s.confirmReset {
		return st.activePanel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			st.title.Render("Reset tracker?"),
			"",
			st.errStyle.Render("This clears the project, all entries, and the undo buffer."),
			st.muted.Render("Theme and time warp are kept."),
			"",
			st.muted.Render("  y: reset  any other key: cancel"),
		))
	}

	p := s.sess.Project()

	var rows []string
	rows = append(rows, st.title.Render("Settings"))
	rows = append(rows, "")
	rows = append(rows, settingRow(st, "Project", p.Name))
	rows = append(rows, settingRow(st, "Goal", fmtWords(p.GoalWords)+" words"))
	rows = append(rows, settingRow(st, "Sprint", dates.FmtRange(p.StartDate, p.EndDate)))
	rows = append(rows, settingRow(st, "Starting count", fmtWords(p.BaselineWords)))
	rows = append(rows, settingRow(st, "Theme", s.sess.Theme()))
	warp := s.sess.TimeWarp()
	if warp == "" {
		warp = "off"
	}
	rows = append(rows, settingRow(st, "Time warp", warp))
	rows = append(rows, "")
	rows = append(rows, st.muted.Render("  enter: edit  R: reset tracker"))

	return st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(st styles, label, value string) string {
	l := lipgloss.NewStyle().Width(18).Render(label)
	return fmt.Sprintf("  %s %s", st.muted.Render(l), st.highlight.Render(value))
}
