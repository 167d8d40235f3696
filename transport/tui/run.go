package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wricardo/geocoin-game/game/service"
)

// Run plays sessionID in the terminal until the user quits. Log output is
// redirected to logPath, or discarded when logPath is empty, so it does
// not draw over the screen.
func Run(ctx context.Context, gameService service.GameService, sessionID, logPath string) error {
	previous := log.Writer()
	defer log.SetOutput(previous)

	if logPath == "" {
		log.SetOutput(io.Discard)
	} else {
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	p := tea.NewProgram(New(ctx, gameService, sessionID), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
