package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wricardo/geocoin-game/game/engine"
	"github.com/wricardo/geocoin-game/game/service"
)

var arrowDirections = map[string]string{
	"up":    engine.North,
	"down":  engine.South,
	"right": engine.East,
	"left":  engine.West,
}

// stateMsg carries a fresh view of the session after an action
type stateMsg struct {
	state  *engine.GameState
	hood   *service.NeighborhoodResult
	status string
}

type errMsg struct{ err error }

// Model is the bubbletea model of the play screen
type Model struct {
	ctx       context.Context
	service   service.GameService
	sessionID string

	state    *engine.GameState
	hood     *service.NeighborhoodResult
	selected string // key of the selected cache
	status   string
	err      error
}

// New creates the play screen for sessionID
func New(ctx context.Context, gameService service.GameService, sessionID string) Model {
	return Model{
		ctx:       ctx,
		service:   gameService,
		sessionID: sessionID,
	}
}

// Init loads the initial state
func (m Model) Init() tea.Cmd {
	return m.action(func() (string, error) { return "", nil })
}

// action runs fn against the service, then reloads state and neighborhood
func (m Model) action(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn()
		if err != nil {
			return errMsg{err}
		}
		state, err := m.service.GetGameState(m.ctx, m.sessionID)
		if err != nil {
			return errMsg{err}
		}
		hood, err := m.service.Neighborhood(m.ctx, m.sessionID, service.DefaultRadius)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state: state, hood: hood, status: status}
	}
}

func resultStatus(result *service.ActionResult, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

// Update handles key presses and service results
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case stateMsg:
		m.state = msg.state
		m.hood = msg.hood
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		} else if msg.state != nil {
			m.status = msg.state.Message
		}
		m.keepSelection()
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	ctx, svc, id := m.ctx, m.service, m.sessionID

	if dir, ok := arrowDirections[key]; ok {
		return m, m.action(func() (string, error) {
			return resultStatus(svc.Move(ctx, id, dir))
		})
	}

	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		m.cycleSelection(1)
		return m, nil

	case "shift+tab":
		m.cycleSelection(-1)
		return m, nil

	case "c":
		cache := m.selectedCache()
		if cache == nil || len(cache.Coins) == 0 {
			m.status = "No coin to collect here."
			return m, nil
		}
		cell, coin := cache.Cell, cache.Coins[0].Coin
		return m, m.action(func() (string, error) {
			return resultStatus(svc.Collect(ctx, id, cell, coin))
		})

	case "d":
		cache := m.selectedCache()
		if cache == nil {
			m.status = "Select a cache first."
			return m, nil
		}
		cell := cache.Cell
		return m, m.action(func() (string, error) {
			return resultStatus(svc.Deposit(ctx, id, cell))
		})

	case "s":
		return m, m.action(func() (string, error) {
			return resultStatus(svc.SaveSnapshot(ctx, id))
		})

	case "u":
		return m, m.action(func() (string, error) {
			return resultStatus(svc.Undo(ctx, id))
		})

	case "r":
		return m, m.action(func() (string, error) {
			state, err := svc.Reset(ctx, id)
			if err != nil {
				return "", err
			}
			return state.Message, nil
		})
	}

	return m, nil
}

// caches returns the materialized caches in range
func (m Model) caches() []engine.CacheView {
	if m.state == nil {
		return nil
	}
	return m.state.Caches
}

func (m Model) selectedCache() *engine.CacheView {
	caches := m.caches()
	for i := range caches {
		if caches[i].Key == m.selected {
			return &caches[i]
		}
	}
	return nil
}

func (m *Model) cycleSelection(step int) {
	caches := m.caches()
	if len(caches) == 0 {
		m.selected = ""
		return
	}
	idx := -1
	for i := range caches {
		if caches[i].Key == m.selected {
			idx = i
			break
		}
	}
	idx = ((idx+step)%len(caches) + len(caches)) % len(caches)
	m.selected = caches[idx].Key
}

// keepSelection drops a selection that went out of range and selects the
// player's own cell when nothing is selected
func (m *Model) keepSelection() {
	if m.selectedCache() != nil {
		return
	}
	m.selected = ""
	if m.state == nil {
		return
	}
	for _, cache := range m.state.Caches {
		if cache.Cell == m.state.PlayerCell {
			m.selected = cache.Key
			return
		}
	}
	if len(m.state.Caches) > 0 {
		m.selected = m.state.Caches[0].Key
	}
}

// View renders the map, status line and selected cache
func (m Model) View() string {
	if m.state == nil {
		if m.err != nil {
			return fmt.Sprintf("Error: %v\n\nPress q to quit.\n", m.err)
		}
		return "Loading...\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s • %s\n\n", m.sessionID, m.state.ConfigName)
	b.WriteString(m.renderMap())
	b.WriteString("\n")

	fmt.Fprintf(&b, "Score: %d | Inventory: %d | Cell: %s | Position: (%.6f, %.6f)\n",
		m.state.Score, len(m.state.Inventory), m.state.PlayerCell.Key(),
		m.state.Position.Lat, m.state.Position.Lng)

	if cache := m.selectedCache(); cache != nil {
		fmt.Fprintf(&b, "Selected cache %s (distance %d): ", cache.Key, cache.Distance)
		if len(cache.Coins) == 0 {
			b.WriteString("empty")
		} else {
			labels := make([]string, len(cache.Coins))
			for i, coin := range cache.Coins {
				labels[i] = coin.Label
			}
			b.WriteString(strings.Join(labels, " "))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No cache selected\n")
	}

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", m.status)
	}
	if m.err != nil {
		fmt.Fprintf(&b, "Error: %v\n", m.err)
	}

	b.WriteString("\narrows move • tab select • c collect • d deposit • s snapshot • u undo • r reset • q quit\n")
	return b.String()
}

// renderMap draws the neighborhood with north up. Each cell is two
// characters wide; the selected cache is marked with '>'.
func (m Model) renderMap() string {
	if m.hood == nil {
		return ""
	}

	byCell := make(map[engine.GridCell]service.NeighborhoodCell, len(m.hood.Cells))
	for _, cell := range m.hood.Cells {
		byCell[cell.Cell] = cell
	}

	center, r := m.hood.Center, m.hood.Radius
	var b strings.Builder
	for i := center.I + r; i >= center.I-r; i-- {
		for j := center.J - r; j <= center.J+r; j++ {
			cell := engine.GridCell{I: i, J: j}
			prefix := byte(' ')
			if cell.Key() == m.selected {
				prefix = '>'
			}
			b.WriteByte(prefix)
			b.WriteByte(symbol(cell, center, byCell[cell]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func symbol(cell, player engine.GridCell, info service.NeighborhoodCell) byte {
	switch {
	case cell == player:
		return '@'
	case info.Materialized && info.Coins > 0:
		return '*'
	case info.Materialized:
		return 'o'
	default:
		return '.'
	}
}
