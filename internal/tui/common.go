package tui

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewEntries
	viewSettings
	viewAccount
)

var viewNames = []string{"Dashboard", "Entries", "Settings", "Account"}

// --- Messages ---

// StateChangedMsg is sent into the program when background work (a
// debounced sync, a change-feed reload) moved the session state.
type StateChangedMsg struct{}

// StatusMsg carries a transient notice from the session layer.
type StatusMsg string

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type signedInMsg struct{}
type refreshedMsg struct{}

// --- Helpers ---

func fmtWords(n int) string {
	return humanize.Comma(int64(n))
}

func errStatus(err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
}
