package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/wricardo/geocoin-game/game/engine"
	"github.com/wricardo/geocoin-game/game/service"
	"github.com/wricardo/geocoin-game/transport/websocket"
)

// handleCommand applies a WebSocket command through the service and
// broadcasts the outcome the same way the matching REST route does. A failed
// action still broadcasts, and its message is returned to the sender.
func (s *Server) handleCommand(ctx context.Context, sessionID string, cmd websocket.Command) error {
	result, err := s.applyCommand(ctx, sessionID, cmd)
	if err != nil {
		return err
	}

	s.broadcast(sessionID, result.GameState, result.Events)

	log.Printf("[WS %s] session=%s status=%s", strings.ToUpper(cmd.Action), sessionID, status(result.Success))

	if !result.Success {
		return errors.New(result.Message)
	}
	return nil
}

func (s *Server) applyCommand(ctx context.Context, sessionID string, cmd websocket.Command) (*service.ActionResult, error) {
	switch cmd.Action {
	case websocket.ActionMove:
		return s.service.Move(ctx, sessionID, cmd.Direction)

	case websocket.ActionLocate:
		if cmd.Lat == nil || cmd.Lng == nil {
			return nil, errors.New("lat and lng are required")
		}
		return s.service.MoveTo(ctx, sessionID, engine.LatLng{Lat: *cmd.Lat, Lng: *cmd.Lng})

	case websocket.ActionCollect:
		cell, err := engine.ParseCellKey(cmd.Cell)
		if err != nil {
			return nil, err
		}
		coin, err := engine.ParseCoin(cmd.Coin)
		if err != nil {
			return nil, err
		}
		return s.service.Collect(ctx, sessionID, cell, coin)

	case websocket.ActionDeposit:
		cell, err := engine.ParseCellKey(cmd.Cell)
		if err != nil {
			return nil, err
		}
		return s.service.Deposit(ctx, sessionID, cell)

	case websocket.ActionSnapshot:
		return s.service.SaveSnapshot(ctx, sessionID)

	case websocket.ActionUndo:
		return s.service.Undo(ctx, sessionID)
	}
	return nil, fmt.Errorf("unknown action %q", cmd.Action)
}
