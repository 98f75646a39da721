package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lenteapp/lente/internal/pkg/logger"
	"github.com/lenteapp/lente/web/internal/config"
	"github.com/lenteapp/lente/web/internal/handlers"
	"github.com/lenteapp/lente/web/internal/middleware"
	"github.com/lenteapp/lente/web/internal/render"
	"github.com/lenteapp/lente/web/internal/session"
)

// setupWebLogging configures the global logger for the web service
func setupWebLogging(logLevel, logFormat string) error {
	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogToStderr: true, // Web service always logs to stderr
		Format:      logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)

	return nil
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load web configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging (must be done before any logging calls)
	if err = setupWebLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	log := slog.Default().With("component", "web")

	// Load templates from configured path (defaults to "web/templates")
	templates, err := render.LoadTemplates(cfg.Templates.Path)
	if err != nil {
		log.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}
	render.LogTemplateNames(templates, log)

	// Get session secret - priority: env var > config file > random
	var sessionSecret []byte
	secretSource := ""

	// 1. Try environment variable first (best for production)
	if envSecret := os.Getenv("SESSION_SECRET"); envSecret != "" {
		sessionSecret, err = base64.StdEncoding.DecodeString(envSecret)
		if err != nil {
			log.Warn("failed to decode SESSION_SECRET env var, trying config", slog.Any("error", err))
		} else {
			secretSource = "environment variable"
		}
	}

	// 2. Try config file if env var not set or failed
	if sessionSecret == nil && cfg.Session.Secret != "" {
		sessionSecret, err = base64.StdEncoding.DecodeString(cfg.Session.Secret)
		if err != nil {
			log.Warn("failed to decode session secret from config", slog.Any("error", err))
		} else {
			secretSource = "config file"
		}
	}

	// 3. Fall back to random generation (dev mode only)
	if sessionSecret == nil {
		log.Warn("no session secret configured, generating random one (sessions won't persist)")
		sessionSecret = make([]byte, 32)
		if _, err := rand.Read(sessionSecret); err != nil {
			log.Error("failed to generate session secret", slog.Any("error", err))
			os.Exit(1)
		}
		secretSource = "random (temporary)"
	}

	if secretSource != "random (temporary)" {
		log.Info("using session secret (sessions will persist across restarts)", slog.String("source", secretSource))
	}

	// Initialize cookie session manager
	cookies := session.NewManager(sessionSecret, cfg.Session.Secure)

	// Initialize handlers
	h := handlers.New(cfg.Backend.BaseURL, cookies, templates, log)

	// Initialize auth middleware with the per-request session factory
	authMw := middleware.NewAuthMiddleware(cookies, h.Sessions, log)

	// Create HTTP router
	router := createRouter(h, authMw)

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting lente web service",
		slog.String("address", addr),
		slog.String("backend", cfg.Backend.BaseURL))

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error("failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
}

// createRouter sets up the HTTP router with all routes and middleware
func createRouter(h *handlers.Handler, authMw *middleware.AuthMiddleware) http.Handler {
	router := mux.NewRouter()

	// Static files with version path: /static/{version}/...
	// Strip /static/{version}/ prefix and serve from web/static/
	staticDir := http.Dir("web/static")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Remove version from path (format: {version}/file.ext)
		parts := strings.SplitN(r.URL.Path, "/", 2)
		if len(parts) == 2 {
			r.URL.Path = "/" + parts[1]
		}
		// Set aggressive cache headers for versioned assets
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.FileServer(staticDir).ServeHTTP(w, r)
	})))

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	// Version info endpoint
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s"}`, render.Version)
	}).Methods("GET")

	// Public routes (no auth required)
	router.HandleFunc("/", h.Home).Methods("GET")
	router.HandleFunc("/login", h.LoginPage).Methods("GET")
	router.HandleFunc("/login", h.Login).Methods("POST")
	router.HandleFunc("/signup", h.SignupPage).Methods("GET")
	router.HandleFunc("/signup", h.Signup).Methods("POST")
	router.HandleFunc("/logout", h.Logout).Methods("GET", "POST")

	// Analysis routes (auth required)
	router.Handle("/upload", authMw.RequireAuth(http.HandlerFunc(h.UploadPage))).Methods("GET")
	router.Handle("/analyze", authMw.RequireAuth(http.HandlerFunc(h.Analyze))).Methods("POST")

	// Wrap router with logging middleware
	return middleware.LogRequest(router)
}
