package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gauge-designer/backend/internal/api"
	"github.com/gauge-designer/backend/internal/catalog"
	"github.com/gauge-designer/backend/internal/config"
	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/session"
	"github.com/gauge-designer/backend/internal/storage"
	"github.com/gauge-designer/backend/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "GaugePanelDesigner.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize layout storage
	layoutStore, err := storage.NewLocalStore(cfg.GetLayoutsDir())
	if err != nil {
		fmt.Printf("Failed to initialize layout storage: %v\n", err)
		os.Exit(1)
	}

	// Load the element catalog, with the optional site overlay
	cat, err := catalog.Load(cfg.Storage.CatalogOverlayFile)
	if err != nil {
		fmt.Printf("Warning: failed to load catalog overlay, using defaults: %v\n", err)
		cat = catalog.Default()
	}

	// Initialize session manager with editor defaults from config
	sessionMgr := session.NewManager(validation.Default(), cat, session.Options{
		MaxSessions:       cfg.Sessions.MaxSessions,
		SimulatorInterval: time.Duration(cfg.Simulator.IntervalMs) * time.Millisecond,
		Viewport: models.EditorViewport{
			ZoomFactor:  cfg.Editor.ZoomFactor,
			GridSize:    cfg.Editor.GridSize,
			SnapEnabled: cfg.Editor.SnapEnabled,
		},
	})

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Sessions.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Sessions.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	// Initialize API handlers
	h, wsHandler := api.NewHandlers(&api.Dependencies{
		Layouts:       layoutStore,
		SessionMgr:    sessionMgr,
		Catalog:       cat,
		Version:       Version,
		AllowDeletion: cfg.Storage.AllowDeletion,
	})

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/health" || strings.HasSuffix(path, "/sensors")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// Routes
	api.RegisterRoutes(e, h)
	api.RegisterWebSocketRoutes(e, wsHandler)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Gauge Panel Designer Server                     ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:     %-45s║\n", configPath)
	fmt.Printf("║  Listen:     http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Layouts:    %-45s║\n", cfg.GetLayoutsDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	defer sessionMgr.Shutdown()
	e.Logger.Fatal(e.StartServer(s))
}
