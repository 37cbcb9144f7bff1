package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkarslan/wordsprint/internal/session"
)

type accountModel struct {
	sess   *session.Session
	width  int
	height int

	signingIn bool
	input     textinput.Model
}

func newAccountModel(sess *session.Session) accountModel {
	in := textinput.New()
	in.Placeholder = "user id"
	in.CharLimit = 64
	in.Width = 32
	return accountModel{sess: sess, input: in}
}

func (a *accountModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a accountModel) formActive() bool { return a.signingIn }

func (a accountModel) update(msg tea.Msg) (accountModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	if a.signingIn {
		switch keyMsg.String() {
		case "esc":
			a.signingIn = false
			a.input.Blur()
			return a, nil
		case "enter":
			userID := a.input.Value()
			a.signingIn = false
			a.input.Blur()
			return a, func() tea.Msg {
				if err := a.sess.SignIn(context.Background(), userID); err != nil {
					return errStatus(err)
				}
				return signedInMsg{}
			}
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	switch keyMsg.String() {
	case "l":
		return a, a.switchMode(session.ModeLocal)
	case "c":
		return a, a.switchMode(session.ModeCloud)
	case "i":
		if a.sess.Mode() != session.ModeCloud || a.sess.UserID() != "" {
			return a, nil
		}
		a.signingIn = true
		a.input.SetValue("")
		return a, a.input.Focus()
	case "o":
		if a.sess.UserID() == "" {
			return a, nil
		}
		return a, func() tea.Msg {
			if err := a.sess.SignOut(context.Background()); err != nil {
				return errStatus(err)
			}
			return statusMsg{text: "Signed out"}
		}
	}

	if key.Matches(keyMsg, keys.Refresh) {
		return a, func() tea.Msg {
			if err := a.sess.Refresh(context.Background()); err != nil {
				return errStatus(err)
			}
			return refreshedMsg{}
		}
	}
	return a, nil
}

func (a accountModel) switchMode(m session.Mode) tea.Cmd {
	if a.sess.Mode() == m {
		return nil
	}
	return func() tea.Msg {
		if err := a.sess.ActivateMode(context.Background(), m); err != nil {
			return errStatus(err)
		}
		return statusMsg{text: "Switched to " + string(m) + " mode"}
	}
}

func (a accountModel) view(st styles) string {
	w := a.width - 4

	mode := a.sess.Mode()
	user := a.sess.UserID()

	var rows []string
	rows = append(rows, st.title.Render("Account"))
	rows = append(rows, "")

	localMark, cloudMark := "○", "○"
	if mode == session.ModeLocal {
		localMark = st.success.Render("●")
	} else {
		cloudMark = st.success.Render("●")
	}
	rows = append(rows, "  "+localMark+" Local   - entries stay on this device")
	rows = append(rows, "  "+cloudMark+" Cloud   - entries sync through the shared ledger")
	rows = append(rows, "")

	switch {
	case mode == session.ModeLocal:
		rows = append(rows, st.muted.Render("  Everything is stored locally. Switch to cloud to sync."))
	case user == "":
		rows = append(rows, st.warning.Render("  Not signed in - tracking is read-only."))
		if a.signingIn {
			rows = append(rows, "")
			rows = append(rows, "  "+a.input.View())
			rows = append(rows, st.muted.Render("  enter: sign in  esc: cancel"))
		}
	default:
		rows = append(rows, "  Signed in as "+st.highlight.Render(user))
		if label := a.sess.SyncLabel(); label != "" {
			rows = append(rows, "  "+st.muted.Render(label))
		}
	}

	rows = append(rows, "")
	hint := "  l: local  c: cloud"
	if mode == session.ModeCloud {
		if user == "" {
			hint += "  i: sign in"
		} else {
			hint += "  o: sign out  r: refresh"
		}
	}
	rows = append(rows, st.muted.Render(hint))

	panel := st.panel
	if a.signingIn {
		panel = st.activePanel
	}
	return panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
