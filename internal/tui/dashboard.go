package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkarslan/wordsprint/internal/dates"
	"github.com/mkarslan/wordsprint/internal/session"
)

type dashboardModel struct {
	sess   *session.Session
	width  int
	height int

	input  textinput.Model
	typing bool
}

func newDashboardModel(sess *session.Session) dashboardModel {
	in := textinput.New()
	in.Placeholder = "words written"
	in.CharLimit = 7
	in.Width = 14
	return dashboardModel{sess: sess, input: in}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) formActive() bool { return d.typing }

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	if d.typing {
		switch keyMsg.String() {
		case "esc":
			d.typing = false
			d.input.Blur()
			d.input.SetValue("")
			return d, nil
		case "enter":
			return d.submitAdd()
		}
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Add):
		if !d.sess.Interactive() {
			return d, func() tea.Msg {
				return statusMsg{text: "Sign in on the Account tab to edit", isError: true}
			}
		}
		d.typing = true
		d.input.SetValue("")
		return d, d.input.Focus()

	case key.Matches(keyMsg, keys.Undo):
		if err := d.sess.Undo(context.Background()); err != nil {
			return d, func() tea.Msg { return errStatus(err) }
		}
		return d, func() tea.Msg { return statusMsg{text: "Undone"} }
	}
	return d, nil
}

func (d dashboardModel) submitAdd() (dashboardModel, tea.Cmd) {
	raw := strings.TrimSpace(d.input.Value())
	d.typing = false
	d.input.Blur()
	d.input.SetValue("")

	n, err := strconv.Atoi(raw)
	if err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Not a number: %q", raw), isError: true}
		}
	}
	if err := d.sess.AddWords(context.Background(), n); err != nil {
		return d, func() tea.Msg { return errStatus(err) }
	}
	return d, func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Added %s words", fmtWords(n))}
	}
}

func (d dashboardModel) view(st styles) string {
	if d.width < 20 {
		return "Terminal too small"
	}
	contentWidth := d.width - 4

	banner := d.renderBanner(st, contentWidth)
	stats := d.renderStatsPanel(st, contentWidth)
	chart := d.renderChartPanel(st, contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, banner, stats, chart)
}

func (d dashboardModel) renderBanner(st styles, w int) string {
	line := st.banner.Render(d.sess.Motivation())
	if warp := d.sess.TimeWarp(); warp != "" {
		line += st.warning.Render(fmt.Sprintf("  (viewing %s)", dates.FmtMD(warp)))
	}
	if label := d.sess.SyncLabel(); label != "" {
		line += st.muted.Render("  " + label)
	}
	return st.header.Width(w).Render(line)
}

func (d dashboardModel) renderStatsPanel(st styles, w int) string {
	stats := d.sess.Stats()

	var rows []string
	rows = append(rows, st.title.Render("Progress"))
	rows = append(rows, fmt.Sprintf("  %s %s  %s %d%%",
		st.muted.Render("Total"), st.highlight.Render(fmtWords(stats.Total)),
		st.muted.Render("of goal"), stats.Pct,
	))
	rows = append(rows, fmt.Sprintf("  %s %s  %s %s",
		st.muted.Render("Today"), st.highlight.Render(fmtWords(stats.TodayWords)),
		st.muted.Render("remaining"), st.highlight.Render(fmtWords(stats.Remaining)),
	))
	needed := st.success
	if stats.Behind {
		needed = st.warning
	}
	rows = append(rows, fmt.Sprintf("  %s %s/day  %s %d",
		st.muted.Render("Needed"), needed.Render(fmtWords(stats.Needed)),
		st.muted.Render("days left"), stats.DaysLeft,
	))

	if d.typing {
		rows = append(rows, "")
		rows = append(rows, "  "+d.input.View())
		rows = append(rows, st.muted.Render("  enter: add  esc: cancel"))
		return st.activePanel.Width(w).Render(strings.Join(rows, "\n"))
	}
	rows = append(rows, "")
	rows = append(rows, st.muted.Render("  a: add words  u: undo"))
	return st.panel.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderChartPanel(st styles, w int) string {
	series := d.sess.Series()
	if len(series.Days) == 0 {
		return st.panel.Width(w).Render(st.muted.Render("Set sprint dates to see the chart"))
	}

	chartWidth := w - 6
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if d.height > 28 {
		chartHeight = 14
	}
	chart := barchart.New(chartWidth, chartHeight)

	barStyle := lipgloss.NewStyle().Foreground(st.pal.primary)
	zeroStyle := lipgloss.NewStyle().Foreground(st.pal.subtle)

	var bars []barchart.BarData
	for i, day := range series.Days {
		style := barStyle
		if series.Daily[i] == 0 {
			style = zeroStyle
		}
		bars = append(bars, barchart.BarData{
			Label: dates.FmtMD(day),
			Values: []barchart.BarValue{
				{Name: day, Value: float64(series.Daily[i]), Style: style},
			},
		})
	}
	chart.PushAll(bars)
	chart.Draw()

	title := st.title.Render("Daily words") +
		st.muted.Render(fmt.Sprintf("  target %s/day", fmtWords(series.IdealPerDay)))
	return st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", chart.View()))
}
