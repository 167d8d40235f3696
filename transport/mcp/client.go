package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/geocoin-game/game/engine"
	"github.com/wricardo/geocoin-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Coin Cache Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Coin Cache Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the world grid, collect coins from caches near you and deposit them
elsewhere. Every collected coin is worth one point.

AVAILABLE TOOLS:
- game_state: Get current game state and the map around the player
- move: Step one tile north/south/east/west
- locate: Jump to a latitude/longitude (live position feed)
- neighborhood: List the cells around the player
- inspect_cache: Look at one cell's cache ("i,j"), optionally materializing it
- collect: Take a coin from a cache into the inventory
- deposit: Put the most recently collected coin into a cache
- save_snapshot / undo: Save and restore world snapshots
- reset_game: Start over
- create_session, get_session, list_sessions, list_configs
- game_instructions: Full rules`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func cellProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Grid cell as \"i,j\" (for example \"369894,-1220628\")",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional world config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "ID of the world config to use (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with a map of nearby caches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{engine.North, engine.South, engine.East, engine.West},
					"description": "Direction to move",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "locate",
		Description: "Set the player position to a coordinate, as a location sensor would",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"lat": map[string]interface{}{
					"type":        "number",
					"description": "Latitude in degrees",
				},
				"lng": map[string]interface{}{
					"type":        "number",
					"description": "Longitude in degrees",
				},
			},
			Required: []string{"session_id", "lat", "lng"},
		},
	}, c.handleLocate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "neighborhood",
		Description: "List the cells within a radius of the player, with spawn and coin counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"radius": map[string]interface{}{
					"type":        "integer",
					"description": "Chebyshev radius in cells (optional, defaults to the world's)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNeighborhood)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "inspect_cache",
		Description: "Describe the cache in a cell. Set materialize to spawn it if it was never visited.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"cell":       cellProperty(),
				"materialize": map[string]interface{}{
					"type":        "boolean",
					"description": "Materialize the cache if it does not exist yet",
				},
			},
			Required: []string{"session_id", "cell"},
		},
	}, c.handleInspectCache)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "collect",
		Description: "Collect a coin from a cache into the inventory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"cell":       cellProperty(),
				"coin": map[string]interface{}{
					"type":        "string",
					"description": "Coin label \"i:j#serial\" (optional, defaults to the first coin in the cache)",
				},
			},
			Required: []string{"session_id", "cell"},
		},
	}, c.handleCollect)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "deposit",
		Description: "Deposit the most recently collected coin into a cache",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"cell":       cellProperty(),
			},
			Required: []string{"session_id", "cell"},
		},
	}, c.handleDeposit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_snapshot",
		Description: "Save a snapshot of every cache for a later undo",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSnapshot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Restore the caches to the most recent snapshot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available world configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID string, parts ...string) string {
	path := "/api/sessions/" + url.PathEscape(sessionID)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

// cellArg reads and validates the "cell" argument
func cellArg(args map[string]interface{}) (engine.GridCell, error) {
	raw, _ := args["cell"].(string)
	return engine.ParseCellKey(raw)
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score := 0
		if s.GameState != nil {
			score = s.GameState.Score
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	var result service.ActionResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "move"), map[string]string{"direction": direction}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Move", &result)), nil
}

func (c *Client) handleLocate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	lat, latOK := args["lat"].(float64)
	lng, lngOK := args["lng"].(float64)
	if !latOK || !lngOK {
		return mcp.NewToolResultError("lat and lng are required numbers"), nil
	}

	var result service.ActionResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "locate"), engine.LatLng{Lat: lat, Lng: lng}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Locate", &result)), nil
}

func (c *Client) handleNeighborhood(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	path := sessionPath(sessionID, "neighborhood")
	if radius, ok := args["radius"].(float64); ok {
		path += fmt.Sprintf("?radius=%d", int(radius))
	}

	var result service.NeighborhoodResult
	if err := c.apiCall(ctx, "GET", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatNeighborhood(&result)), nil
}

func (c *Client) handleInspectCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cell, err := cellArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	method, path := "GET", sessionPath(sessionID, "caches", cell.Key())
	if materialize, _ := args["materialize"].(bool); materialize {
		method, path = "POST", path+"/materialize"
	}

	var result service.CacheResult
	if err := c.apiCall(ctx, method, path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCacheResult(&result)), nil
}

func (c *Client) handleCollect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cell, err := cellArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	coin, _ := args["coin"].(string)
	if coin == "" {
		var cache service.CacheResult
		if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "caches", cell.Key()), nil, &cache); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if cache.Cache == nil || len(cache.Cache.Coins) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("cache %s has no coins to collect", cell.Key())), nil
		}
		coin = cache.Cache.Coins[0].Label
	}

	var result service.ActionResult
	err = c.apiCall(ctx, "POST", sessionPath(sessionID, "caches", cell.Key(), "collect"), map[string]string{"coin": coin}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Collect", &result)), nil
}

func (c *Client) handleDeposit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cell, err := cellArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "caches", cell.Key(), "deposit"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Deposit", &result)), nil
}

func (c *Client) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "snapshot"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Snapshot", &result)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "undo"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Undo", &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		salted := ""
		if config.Salted {
			salted = ", salted"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Tile: %g°, Radius: %d, Spawn: %g%s\n  Start: (%g, %g)\n\n",
			config.ConfigID, config.Name, config.Description,
			config.TileDegrees, config.NeighborhoodSize, config.SpawnProbability, salted,
			config.Start.Lat, config.Start.Lng)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Coin Cache Game - Complete Instructions

GAME OBJECTIVE:
Walk the world, collect coins from caches and deposit them in other caches.
Each collected coin adds one point to your score.

THE WORLD:
• The globe is divided into square grid cells of a fixed size in degrees.
  Cell "i,j" is floor(lat / size), floor(lng / size).
• Whether a cell holds a cache, and how many coins it starts with, is decided
  by a deterministic function of the cell. Every player sees the same world.
• A cache appears (materializes) the first time a cell near you is visited.
  After that its contents only change through collect and deposit.

COINS:
• Every coin has a permanent identity "i:j#serial": the cell it spawned in
  and its serial number there. Collect and deposit move coins and never
  create or destroy them.
• A coin's home is the center of its origin cell.

ACTIONS:
• move: step one cell north, south, east or west
• locate: set your position to a coordinate
• collect: take a coin from a cache in range (score +1)
• deposit: put your most recently collected coin into a cache in range
• save_snapshot / undo: save the caches and restore them later
  (undo restores caches only; your inventory and score stay as they are,
  so a coin you collected after the snapshot can be collected again)
• reset_game: clear everything and start again

MAP LEGEND (game_state):
• @  your cell
• *  cache with coins
• o  empty cache
• .  no cache

TIPS:
• Use neighborhood to see which nearby cells spawn caches.
• inspect_cache shows a cell's coins without materializing it.
• A failed collect or deposit changes nothing and reports success=false.

Good luck, and happy caching!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Position: (%.6f, %.6f) | Cell: %s | Score: %d | Moves: %d\n",
		state.Position.Lat, state.Position.Lng, state.PlayerCell.Key(), state.Score, state.TotalMoves)
	fmt.Fprintf(&b, "World: %d caches, %d coins | Snapshots: %d\n", state.WorldCells, state.WorldCoins, state.Snapshots)

	b.WriteString("Inventory: ")
	if len(state.Inventory) == 0 {
		b.WriteString("(empty)")
	} else {
		labels := make([]string, len(state.Inventory))
		for i, coin := range state.Inventory {
			labels[i] = coin.Label
		}
		b.WriteString(strings.Join(labels, ", "))
	}
	b.WriteString("\n\n")

	if m := formatMap(state); m != "" {
		b.WriteString(m)
		b.WriteString("\n")
	}

	withCoins := 0
	for _, cache := range state.Caches {
		if len(cache.Coins) > 0 {
			withCoins++
		}
	}
	fmt.Fprintf(&b, "Caches in range: %d (%d with coins)\n", len(state.Caches), withCoins)
	for _, cache := range state.Caches {
		if len(cache.Coins) == 0 {
			continue
		}
		b.WriteString(formatCacheLine(&cache))
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

// formatMap renders the caches in range as a character grid with north up
func formatMap(state *engine.GameState) string {
	radius := 0
	marks := make(map[engine.GridCell]byte, len(state.Caches))
	for _, cache := range state.Caches {
		if cache.Distance > radius {
			radius = cache.Distance
		}
		if len(cache.Coins) > 0 {
			marks[cache.Cell] = '*'
		} else {
			marks[cache.Cell] = 'o'
		}
	}

	center := state.PlayerCell
	var b strings.Builder
	for i := center.I + radius; i >= center.I-radius; i-- {
		for j := center.J - radius; j <= center.J+radius; j++ {
			cell := engine.GridCell{I: i, J: j}
			switch {
			case cell == center:
				b.WriteByte('@')
			case marks[cell] != 0:
				b.WriteByte(marks[cell])
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatCacheLine(cache *engine.CacheView) string {
	labels := make([]string, len(cache.Coins))
	for i, coin := range cache.Coins {
		labels[i] = coin.Label
	}
	return fmt.Sprintf("- %s (distance %d): %s\n", cache.Key, cache.Distance, strings.Join(labels, ", "))
}

func formatActionResult(action string, result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s successful\n", action)
	} else {
		fmt.Fprintf(&b, "✗ %s failed\n", action)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if result.Coin != nil {
		fmt.Fprintf(&b, "Coin: %s (home %.6f, %.6f)\n", result.Coin.Label, result.Coin.Home.Lat, result.Coin.Home.Lng)
	}
	if result.Cache != nil {
		b.WriteString("Cache now: ")
		b.WriteString(strings.TrimPrefix(formatCacheLine(result.Cache), "- "))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatCacheResult(result *service.CacheResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s: spawns=%v materialized=%v\n", result.Key, result.Spawns, result.Materialized)
	if result.Cache != nil {
		fmt.Fprintf(&b, "Anchor: (%.6f, %.6f) | Distance: %d\n", result.Cache.Anchor.Lat, result.Cache.Anchor.Lng, result.Cache.Distance)
		if len(result.Cache.Coins) == 0 {
			b.WriteString("Coins: (none)\n")
		} else {
			b.WriteString("Coins:\n")
			for _, coin := range result.Cache.Coins {
				fmt.Fprintf(&b, "- %s (home %.6f, %.6f)\n", coin.Label, coin.Home.Lat, coin.Home.Lng)
			}
		}
	} else if !result.Spawns {
		b.WriteString("No cache in this cell.\n")
	}
	return b.String()
}

func formatNeighborhood(result *service.NeighborhoodResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Neighborhood of %s, radius %d (%d cells)\n", result.Center.Key(), result.Radius, len(result.Cells))
	spawning := 0
	for _, cell := range result.Cells {
		if !cell.Spawns {
			continue
		}
		spawning++
		state := "not visited"
		if cell.Materialized {
			state = fmt.Sprintf("%d coins", cell.Coins)
		}
		fmt.Fprintf(&b, "- %s: %s\n", cell.Key, state)
	}
	if spawning == 0 {
		b.WriteString("No caches nearby.\n")
	}
	return b.String()
}
