package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wricardo/geocoin-game/game/engine"
	"github.com/wricardo/geocoin-game/game/service"
	"github.com/wricardo/geocoin-game/transport/websocket"
)

func TestHandleCommand(t *testing.T) {
	lat, lng := 0.00055, 0.00065
	cell := engine.GridCell{I: 5, J: 5}

	tests := []struct {
		name     string
		cmd      websocket.Command
		setup    func(*MockGameService, *string)
		called   string
		expected string // error substring, empty for success
	}{
		{
			name: "move",
			cmd:  websocket.Command{Action: websocket.ActionMove, Direction: engine.North},
			setup: func(m *MockGameService, called *string) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.ActionResult, error) {
					*called = "move " + direction
					return okResult(), nil
				}
			},
			called: "move north",
		},
		{
			name: "locate",
			cmd:  websocket.Command{Action: websocket.ActionLocate, Lat: &lat, Lng: &lng},
			setup: func(m *MockGameService, called *string) {
				m.MoveToFunc = func(ctx context.Context, sessionID string, pos engine.LatLng) (*service.ActionResult, error) {
					if pos.Lat != lat || pos.Lng != lng {
						t.Errorf("Unexpected position %+v", pos)
					}
					*called = "locate"
					return okResult(), nil
				}
			},
			called: "locate",
		},
		{
			name:     "locate without coordinates",
			cmd:      websocket.Command{Action: websocket.ActionLocate, Lat: &lat},
			expected: "lat and lng are required",
		},
		{
			name: "collect",
			cmd:  websocket.Command{Action: websocket.ActionCollect, Cell: "5,5", Coin: "5:5#2"},
			setup: func(m *MockGameService, called *string) {
				m.CollectFunc = func(ctx context.Context, sessionID string, c engine.GridCell, coin engine.Coin) (*service.ActionResult, error) {
					if c != cell || coin != (engine.Coin{Original: cell, Serial: 2}) {
						t.Errorf("Unexpected collect %v %v", c, coin)
					}
					*called = "collect"
					return okResult(), nil
				}
			},
			called: "collect",
		},
		{
			name:     "collect with bad coin",
			cmd:      websocket.Command{Action: websocket.ActionCollect, Cell: "5,5", Coin: "nope"},
			expected: "invalid coin",
		},
		{
			name:     "deposit with bad cell",
			cmd:      websocket.Command{Action: websocket.ActionDeposit, Cell: "x"},
			expected: "invalid cell key",
		},
		{
			name: "failed deposit reports its message",
			cmd:  websocket.Command{Action: websocket.ActionDeposit, Cell: "5,5"},
			setup: func(m *MockGameService, called *string) {
				m.DepositFunc = func(ctx context.Context, sessionID string, c engine.GridCell) (*service.ActionResult, error) {
					*called = "deposit"
					return &service.ActionResult{GameState: &engine.GameState{}, Message: "Nothing to deposit."}, nil
				}
			},
			called:   "deposit",
			expected: "Nothing to deposit.",
		},
		{
			name: "snapshot",
			cmd:  websocket.Command{Action: websocket.ActionSnapshot},
			setup: func(m *MockGameService, called *string) {
				m.SaveSnapshotFunc = func(ctx context.Context, sessionID string) (*service.ActionResult, error) {
					*called = "snapshot"
					return okResult(), nil
				}
			},
			called: "snapshot",
		},
		{
			name: "unknown session",
			cmd:  websocket.Command{Action: websocket.ActionUndo},
			setup: func(m *MockGameService, called *string) {
				m.UndoFunc = func(ctx context.Context, sessionID string) (*service.ActionResult, error) {
					*called = "undo"
					return nil, notFound(sessionID)
				}
			},
			called:   "undo",
			expected: "session not found",
		},
		{
			name:     "unknown action",
			cmd:      websocket.Command{Action: "teleport"},
			expected: `unknown action "teleport"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{}
			var called string
			if tt.setup != nil {
				tt.setup(mock, &called)
			}
			server := setupTestServer(t, mock)

			err := server.handleCommand(context.Background(), "s1", tt.cmd)
			if called != tt.called {
				t.Errorf("Expected service call %q, got %q", tt.called, called)
			}
			switch {
			case tt.expected == "" && err != nil:
				t.Errorf("Unexpected error: %v", err)
			case tt.expected != "" && (err == nil || !strings.Contains(err.Error(), tt.expected)):
				t.Errorf("Expected error containing %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestHandleCommand_WrapsServiceErrors(t *testing.T) {
	mock := &MockGameService{
		MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.ActionResult, error) {
			return nil, service.ErrInvalidDirection
		},
	}
	server := setupTestServer(t, mock)

	err := server.handleCommand(context.Background(), "s1", websocket.Command{Action: websocket.ActionMove, Direction: "up"})
	if !errors.Is(err, service.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
}
