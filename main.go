// Command geocoin starts the coin cache game.
//
// It supports three modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a session in the terminal
//
// Flags default to the environment (see config.Settings) and control
// host/port, config directory, session store, autosave and optional ngrok
// tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/geocoin-game/api"
	"github.com/wricardo/geocoin-game/game/config"
	"github.com/wricardo/geocoin-game/game/service"
	"github.com/wricardo/geocoin-game/game/session"
	"github.com/wricardo/geocoin-game/transport/mcp"
	"github.com/wricardo/geocoin-game/transport/tui"
	"github.com/wricardo/geocoin-game/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Coin Cache Game Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = newCommand(settings).Run(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// newCommand builds the command tree. Flag defaults come from defaults.
func newCommand(defaults *config.Settings) *cli.Command {
	return &cli.Command{
		Name:    "geocoin",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: defaults.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: defaults.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Value: defaults.ConfigDir, Usage: "Directory containing world configurations"},
			&cli.BoolFlag{Name: "debug", Value: defaults.Debug, Usage: "Enable debug logging"},
			&cli.StringFlag{Name: "store", Value: defaults.Store, Usage: "Session store: file or sqlite"},
			&cli.StringFlag{Name: "sessions-dir", Value: defaults.SessionsDir, Usage: "Directory for the file session store"},
			&cli.StringFlag{Name: "sqlite-path", Value: defaults.SQLitePath, Usage: "Database path for the sqlite session store"},
			&cli.DurationFlag{Name: "autosave", Value: defaults.AutosaveInterval, Usage: "Interval between session autosaves (0 disables)"},
			&cli.DurationFlag{Name: "session-ttl", Value: defaults.SessionTTL, Usage: "Drop sessions idle for longer than this"},
			&cli.BoolFlag{Name: "ngrok", Value: defaults.NgrokEnabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: defaults.NgrokAuthToken, Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
			&cli.StringFlag{Name: "ngrok-domain", Value: defaults.NgrokDomain, Usage: "Custom ngrok domain (optional)"},
		},
		Action: serverAction,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serverAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  mcpAction,
			},
			{
				Name:  "play",
				Usage: "Play a session in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "session", Usage: "Resume this session instead of creating one"},
					&cli.StringFlag{Name: "world", Usage: "World configuration for a new session"},
					&cli.StringFlag{Name: "log-file", Value: "play.log", Usage: "Log file while the screen is active (empty discards logs)"},
				},
				Action: playAction,
			},
		},
	}
}

// settingsFromCommand overlays parsed flags onto the environment settings
func settingsFromCommand(cmd *cli.Command) (*config.Settings, error) {
	s := &config.Settings{
		Host:             cmd.String("host"),
		Port:             cmd.Int("port"),
		ConfigDir:        cmd.String("config-dir"),
		Debug:            cmd.Bool("debug"),
		Store:            cmd.String("store"),
		SessionsDir:      cmd.String("sessions-dir"),
		SQLitePath:       cmd.String("sqlite-path"),
		AutosaveInterval: cmd.Duration("autosave"),
		SessionTTL:       cmd.Duration("session-ttl"),
		NgrokEnabled:     cmd.Bool("ngrok"),
		NgrokAuthToken:   cmd.String("ngrok-auth"),
		NgrokDomain:      cmd.String("ngrok-domain"),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	return s, nil
}

// app holds the services shared by every mode
type app struct {
	settings *config.Settings
	sessions *session.Manager
	service  service.GameService
	close    func() error
}

// newApp wires the config manager, the session store and the game service,
// and loads persisted sessions.
func newApp(s *config.Settings) (*app, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	var (
		persistence session.SessionPersistence
		closeStore  = func() error { return nil }
	)
	switch s.Store {
	case config.StoreSQLite:
		store, err := session.OpenSQLitePersistence(s.SQLitePath, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		persistence, closeStore = store, store.Close
	default:
		store, err := session.NewFilePersistence(s.SessionsDir, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		persistence = store
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	return &app{
		settings: s,
		sessions: sessionManager,
		service:  service.NewGameService(sessionManager, configManager),
		close:    closeStore,
	}, nil
}

// Close saves every session and releases the store
func (a *app) Close() error {
	saveErr := a.service.SaveAllSessions(context.Background())
	if saveErr != nil {
		log.Printf("Warning: Failed to save sessions: %v", saveErr)
	}
	return errors.Join(saveErr, a.close())
}

// startBackground runs autosave and cleanup until ctx is done
func (a *app) startBackground(ctx context.Context, wg *sync.WaitGroup) {
	if a.settings.AutosaveInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			autosaveRoutine(ctx, a.service, a.settings.AutosaveInterval)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, a.service, a.settings.SessionTTL, time.Hour)
	}()
}

// autosaveRoutine persists all sessions every interval
func autosaveRoutine(ctx context.Context, gameService service.GameService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := gameService.SaveAllSessions(ctx); err != nil {
				log.Printf("Warning: Autosave failed: %v", err)
			}
		}
	}
}

// sessionCleanupRoutine periodically saves and evicts sessions that have not
// been accessed within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, gameService service.GameService, maxAge, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := gameService.CleanupExpiredSessions(ctx, maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	s, err := settingsFromCommand(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s (mode: server, store: %s)", AppName, Version, s.Store)

	a, err := newApp(s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer a.Close()

	return runHTTPServer(ctx, a)
}

// newRouter mounts the API at the root and the MCP JSON-RPC endpoint at
// /mcp. MCP tools call back into the API through baseURL.
func newRouter(apiServer http.Handler, baseURL string) *http.ServeMux {
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer serves the API, WebSocket hub and /mcp endpoint until ctx
// is cancelled. If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	a.startBackground(ctx, &wg)

	hub := websocket.NewHub()
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	addr := a.settings.Addr()
	mainRouter := newRouter(api.NewServer(a.service, hub), "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
		close(serveErr)
	}()

	if a.settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, a.settings, mainRouter)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err = <-serveErr:
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()
	log.Println("Server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, s *config.Settings, handler http.Handler) {
	if s.NgrokAuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if s.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.NgrokDomain))
		log.Printf("Using custom ngrok domain: %s", s.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.NgrokAuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	s, err := settingsFromCommand(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s (mode: mcp)", AppName, Version)

	a, err := newApp(s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer a.Close()

	return runStdioMCPWithInternalServer(ctx, a)
}

// externalAPIAvailable reports whether a game server answers /health at baseURL
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; if there is
// none, it starts an internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)

	externalURL := "http://" + a.settings.Addr()
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	if externalAPIAvailable(ctx, externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", listener.Addr())

		a.startBackground(ctx, &wg)

		hub := websocket.NewHub()
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Run(ctx)
		}()

		httpServer := &http.Server{Handler: api.NewServer(a.service, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	s, err := settingsFromCommand(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer a.Close()

	sessionID, err := playSession(ctx, a.service, cmd.String("session"), cmd.String("world"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	a.startBackground(ctx, &wg)
	defer wg.Wait()
	defer cancel()

	return tui.Run(ctx, a.service, sessionID, cmd.String("log-file"))
}

// playSession resumes sessionID when given and creates a session in world otherwise
func playSession(ctx context.Context, gameService service.GameService, sessionID, world string) (string, error) {
	if sessionID != "" {
		if _, err := gameService.GetSession(ctx, sessionID); err != nil {
			return "", err
		}
		return sessionID, nil
	}
	info, err := gameService.CreateSession(ctx, world)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	log.Printf("Created session %s", info.ID)
	return info.ID, nil
}
