package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkarslan/wordsprint/internal/cloud"
	"github.com/mkarslan/wordsprint/internal/config"
	"github.com/mkarslan/wordsprint/internal/export"
	"github.com/mkarslan/wordsprint/internal/localstore"
	"github.com/mkarslan/wordsprint/internal/session"
	"github.com/mkarslan/wordsprint/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	local := localstore.New(cfg.DataDir)

	var db *cloud.Store
	if cfg.CloudConfigured() {
		db, err = cloud.New(cfg.CloudDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening ledger: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var p *tea.Program
	sess := session.New(cfg, local, db,
		session.WithNotify(func(msg string) {
			if p != nil {
				p.Send(tui.StatusMsg(msg))
			}
		}),
		session.WithOnChange(func() {
			if p != nil {
				p.Send(tui.StateChangedMsg{})
			}
		}),
	)

	if err := sess.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	// wordsprint --import file.json restores an exported snapshot.
	if len(os.Args) == 3 && os.Args[1] == "--import" {
		payload, err := export.FromJSON(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if err := sess.Import(context.Background(), payload); err != nil {
			fmt.Fprintf(os.Stderr, "error importing: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("imported", os.Args[2])
		return
	}

	app := tui.NewApp(sess)
	p = tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
