package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/geocoin-game/api"
	"github.com/wricardo/geocoin-game/game/config"
	"github.com/wricardo/geocoin-game/game/engine"
	"github.com/wricardo/geocoin-game/game/service"
	"github.com/wricardo/geocoin-game/game/session"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "test-session", "score": 5})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "test-session" {
		t.Errorf("Expected id test-session, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"plain body", "Internal Server Error", "API error: 500"},
		{"json error", `{"error":"session not found: ab12"}`, "session not found: ab12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "classic",
			GameState:  &engine.GameState{Message: "No points yet..."},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), toolRequest("create_session", map[string]interface{}{
		"config_name": "classic",
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if gotBody["config_id"] != "classic" {
		t.Errorf("Expected config_id forwarded, got %v", gotBody)
	}
}

func TestClient_locate(t *testing.T) {
	var got engine.LatLng
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/locate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(service.ActionResult{Success: true, GameState: &engine.GameState{Position: got}})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, _ := client.handleLocate(context.Background(), toolRequest("locate", map[string]interface{}{
		"session_id": "ab12",
		"lat":        36.9895,
		"lng":        -122.0628,
	}))
	if !strings.Contains(resultText(t, result), "✓ Locate successful") {
		t.Errorf("Unexpected result: %s", resultText(t, result))
	}
	if got.Lat != 36.9895 || got.Lng != -122.0628 {
		t.Errorf("Expected position forwarded, got %v", got)
	}

	result, _ = client.handleLocate(context.Background(), toolRequest("locate", map[string]interface{}{
		"session_id": "ab12",
		"lat":        "north",
	}))
	if !result.IsError {
		t.Error("Expected error result for missing coordinates")
	}
}

func TestClient_inspectCache(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(service.CacheResult{
			Key:          "5,5",
			Spawns:       true,
			Materialized: true,
			Cache: &engine.CacheView{
				Key:   "5,5",
				Coins: []engine.CoinView{{Label: "5:5#0"}, {Label: "5:5#1"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	tests := []struct {
		name         string
		args         map[string]interface{}
		expectMethod string
		expectPath   string
	}{
		{
			name:         "inspect",
			args:         map[string]interface{}{"session_id": "ab12", "cell": "5,5"},
			expectMethod: "GET",
			expectPath:   "/api/sessions/ab12/caches/5,5",
		},
		{
			name:         "materialize",
			args:         map[string]interface{}{"session_id": "ab12", "cell": " 5, 5", "materialize": true},
			expectMethod: "POST",
			expectPath:   "/api/sessions/ab12/caches/5,5/materialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := client.handleInspectCache(context.Background(), toolRequest("inspect_cache", tt.args))
			text := resultText(t, result)
			if gotMethod != tt.expectMethod || gotPath != tt.expectPath {
				t.Errorf("Expected %s %s, got %s %s", tt.expectMethod, tt.expectPath, gotMethod, gotPath)
			}
			if !strings.Contains(text, "5:5#1") {
				t.Errorf("Expected coins listed, got: %s", text)
			}
		})
	}

	t.Run("bad cell", func(t *testing.T) {
		result, _ := client.handleInspectCache(context.Background(), toolRequest("inspect_cache", map[string]interface{}{
			"session_id": "ab12",
			"cell":       "five",
		}))
		if !result.IsError {
			t.Error("Expected error result for bad cell")
		}
	})
}

func TestFormatGameState(t *testing.T) {
	state := &engine.GameState{
		Position:   engine.LatLng{Lat: 0.00055, Lng: 0.00055},
		PlayerCell: engine.GridCell{I: 5, J: 5},
		Score:      2,
		TotalMoves: 3,
		Inventory:  []engine.CoinView{{Label: "5:5#0"}, {Label: "4:6#1"}},
		Caches: []engine.CacheView{
			{Cell: engine.GridCell{I: 6, J: 4}, Key: "6,4", Distance: 1, Coins: []engine.CoinView{{Label: "6:4#0"}}},
			{Cell: engine.GridCell{I: 4, J: 6}, Key: "4,6", Distance: 1},
		},
		Message: "2 points accumulated.",
	}

	result := formatGameState(state)

	expectedFields := []string{
		"Cell: 5,5",
		"Score: 2",
		"Moves: 3",
		"Inventory: 5:5#0, 4:6#1",
		"*..\n.@.\n..o\n",
		"Caches in range: 2 (1 with coins)",
		"- 6,4 (distance 1): 6:4#0",
		"2 points accumulated.",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected %q in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestFormatActionResult(t *testing.T) {
	tests := []struct {
		name     string
		result   *service.ActionResult
		expected []string
	}{
		{
			name: "collect",
			result: &service.ActionResult{
				Success:   true,
				Message:   "Collected coin 5:5#0.",
				Coin:      &engine.CoinView{Label: "5:5#0", Home: engine.LatLng{Lat: 0.00055, Lng: 0.00055}},
				GameState: &engine.GameState{Score: 1},
			},
			expected: []string{"✓ Collect successful", "Coin: 5:5#0", "Score: 1"},
		},
		{
			name: "failed deposit",
			result: &service.ActionResult{
				Success:   false,
				Message:   "Nothing to deposit.",
				GameState: &engine.GameState{},
			},
			expected: []string{"✗ Collect failed", "Nothing to deposit."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatActionResult("Collect", tt.result)
			for _, field := range tt.expected {
				if !strings.Contains(out, field) {
					t.Errorf("Expected %q in output, got: %s", field, out)
				}
			}
		})
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), toolRequest("game_instructions", nil))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{"GAME OBJECTIVE:", "THE WORLD:", "COINS:", "ACTIONS:", "MAP LEGEND"} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected %q in instructions", content)
		}
	}
}

// newGameAPI serves the real REST API over a dense test world
func newGameAPI(t *testing.T) (*httptest.Server, service.GameService) {
	t.Helper()
	dir, err := os.MkdirTemp("", "mcp_configs_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	dense := engine.DefaultGameConfig()
	dense.Name = "dense"
	dense.NeighborhoodSize = 2
	dense.SpawnProbability = 1
	dense.Start = engine.LatLng{Lat: 0.00055, Lng: 0.00055}
	if err := configs.SaveConfig("dense", dense); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	gameService := service.NewGameService(session.NewManager(), configs)
	server := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(server.Close)
	return server, gameService
}

func TestClient_PlayThroughAPI(t *testing.T) {
	server, gameService := newGameAPI(t)
	ctx := context.Background()

	info, err := gameService.CreateSession(ctx, "dense")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	client := NewClient(server.URL)

	call := func(name string, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) string {
		t.Helper()
		args["session_id"] = info.ID
		result, err := handler(ctx, toolRequest(name, args))
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if result.IsError {
			t.Fatalf("%s returned error: %s", name, resultText(t, result))
		}
		return resultText(t, result)
	}

	text := call("game_state", client.handleGameState, map[string]interface{}{})
	if !strings.Contains(text, "Cell: 5,5") || !strings.Contains(text, "Caches in range: 25") {
		t.Errorf("Unexpected initial state: %s", text)
	}

	state, err := gameService.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to get state: %v", err)
	}
	source, target := "", ""
	for _, cache := range state.Caches {
		if source == "" && len(cache.Coins) > 0 {
			source = cache.Key
		} else if target == "" {
			target = cache.Key
		}
	}
	if source == "" {
		t.Fatal("no coins in range")
	}

	call("save_snapshot", client.handleSnapshot, map[string]interface{}{})

	text = call("collect", client.handleCollect, map[string]interface{}{"cell": source})
	if !strings.Contains(text, "✓ Collect successful") || !strings.Contains(text, "Score: 1") {
		t.Errorf("Unexpected collect result: %s", text)
	}

	text = call("deposit", client.handleDeposit, map[string]interface{}{"cell": target})
	if !strings.Contains(text, "✓ Deposit successful") || !strings.Contains(text, "Inventory: (empty)") {
		t.Errorf("Unexpected deposit result: %s", text)
	}

	text = call("deposit", client.handleDeposit, map[string]interface{}{"cell": target})
	if !strings.Contains(text, "✗ Deposit failed") {
		t.Errorf("Expected empty deposit to fail, got: %s", text)
	}

	text = call("undo", client.handleUndo, map[string]interface{}{})
	if !strings.Contains(text, "✓ Undo successful") || !strings.Contains(text, "Score: 1") {
		t.Errorf("Unexpected undo result: %s", text)
	}

	text = call("move", client.handleMove, map[string]interface{}{"direction": engine.North})
	if !strings.Contains(text, "Cell: 6,5") {
		t.Errorf("Expected to move north, got: %s", text)
	}

	text = call("neighborhood", client.handleNeighborhood, map[string]interface{}{"radius": float64(1)})
	if !strings.Contains(text, "radius 1 (9 cells)") {
		t.Errorf("Unexpected neighborhood: %s", text)
	}

	text = call("reset_game", client.handleReset, map[string]interface{}{})
	if !strings.Contains(text, "Score: 0") {
		t.Errorf("Unexpected reset result: %s", text)
	}

	result, _ := client.handleMove(ctx, toolRequest("move", map[string]interface{}{
		"session_id": "zzzz",
		"direction":  engine.North,
	}))
	if !result.IsError || !strings.Contains(resultText(t, result), "session not found") {
		t.Errorf("Expected session not found error, got %+v", result)
	}
}
