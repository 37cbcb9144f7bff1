package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkarslan/wordsprint/internal/dates"
	"github.com/mkarslan/wordsprint/internal/session"
)

type entriesModel struct {
	sess   *session.Session
	width  int
	height int

	cursor  int
	editing bool
	input   textinput.Model
}

func newEntriesModel(sess *session.Session) entriesModel {
	in := textinput.New()
	in.Placeholder = "total"
	in.CharLimit = 7
	in.Width = 10
	return entriesModel{sess: sess, input: in}
}

func (e *entriesModel) setSize(w, h int) {
	e.width = w
	e.height = h
}

func (e entriesModel) formActive() bool { return e.editing }

func (e entriesModel) days() []string {
	p := e.sess.Project()
	return dates.DatesInRange(p.StartDate, p.EndDate)
}

func (e entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil
	}
	days := e.days()
	if e.cursor >= len(days) {
		e.cursor = 0
	}

	if e.editing {
		switch keyMsg.String() {
		case "esc":
			e.editing = false
			e.input.Blur()
			return e, nil
		case "enter":
			return e.commitEdit(days)
		}
		var cmd tea.Cmd
		e.input, cmd = e.input.Update(msg)
		return e, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if e.cursor > 0 {
			e.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if e.cursor < len(days)-1 {
			e.cursor++
		}
	case key.Matches(keyMsg, keys.Enter):
		if len(days) == 0 {
			return e, nil
		}
		if !e.sess.Interactive() {
			return e, func() tea.Msg {
				return statusMsg{text: "Sign in on the Account tab to edit", isError: true}
			}
		}
		e.editing = true
		e.input.SetValue(strconv.Itoa(e.sess.Entries()[days[e.cursor]]))
		return e, e.input.Focus()
	}
	return e, nil
}

func (e entriesModel) commitEdit(days []string) (entriesModel, tea.Cmd) {
	raw := strings.TrimSpace(e.input.Value())
	e.editing = false
	e.input.Blur()

	total, err := strconv.Atoi(raw)
	if err != nil {
		return e, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Not a number: %q", raw), isError: true}
		}
	}
	day := days[e.cursor]
	if err := e.sess.EditDayTotal(context.Background(), day, total); err != nil {
		return e, func() tea.Msg { return errStatus(err) }
	}
	return e, func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Set %s to %s words", dates.FmtMD(day), fmtWords(total))}
	}
}

func (e entriesModel) view(st styles) string {
	w := e.width - 4
	days := e.days()
	if len(days) == 0 {
		return st.panel.Width(w).Render(st.muted.Render("Set sprint dates in Settings to log entries"))
	}

	entries := e.sess.Entries()
	viewing := e.sess.ViewingDay()

	var rows []string
	p := e.sess.Project()
	rows = append(rows, st.title.Render("Entries")+st.muted.Render("  "+dates.FmtRange(p.StartDate, p.EndDate)))
	rows = append(rows, "")

	// Keep the cursor visible in tall sprints.
	visible := e.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if e.cursor >= visible {
		start = e.cursor - visible + 1
	}
	end := start + visible
	if end > len(days) {
		end = len(days)
	}

	for i := start; i < end; i++ {
		day := days[i]
		cursor := "  "
		style := st.normalItem
		if i == e.cursor {
			cursor = "> "
			style = st.selectedItem
		}
		marker := " "
		if day == viewing {
			marker = st.accent.Render("●")
		}

		if e.editing && i == e.cursor {
			rows = append(rows, fmt.Sprintf("%s%s %-8s %s", cursor, marker, dates.FmtMD(day), e.input.View()))
			continue
		}
		total := entries[day]
		words := st.muted.Render("—")
		if total > 0 {
			words = fmtWords(total)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-8s %8s", cursor, marker, dates.FmtMD(day), words)))
	}

	rows = append(rows, "")
	if e.editing {
		rows = append(rows, st.muted.Render("  enter: save  esc: cancel"))
	} else {
		rows = append(rows, st.muted.Render("  enter: edit day  ↑/↓: move"))
	}
	return st.panel.Width(w).Render(strings.Join(rows, "\n"))
}
