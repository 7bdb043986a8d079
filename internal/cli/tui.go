package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/linkwise/internal/tui"
)

// runTUI opens the interactive app. Log output goes to log.path while the
// alternate screen is active, or nowhere.
func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.Log.Path != "" {
		f, err := tea.LogToFile(e.cfg.Log.Path, "linkwise")
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	if e.cfg.Log.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := tui.New(ctx, e.cfg, e.store, e.services)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
