// Package web serves the public site and the admin panel. All data comes from
// the REST backend through the api package; this layer renders templates,
// guards the admin area, and is the single place that turns a session-expired
// error into a redirect to the login page.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"xcsite/internal/adapters/email"
	"xcsite/internal/adapters/http/middleware"
	"xcsite/internal/api"
	"xcsite/internal/application/deleteflow"
	"xcsite/internal/domain/site"
)

// Deps holds the site's dependencies.
type Deps struct {
	Site   site.Config
	Client *api.Client
	Roster *api.Roster
	Tokens api.TokenStore
	Sender email.Sender
}

// Global deps instance (set by NewMux)
var deps *Deps

// Global delete confirmation flow for the admin dashboard. One per process:
// the admin area is single-tenant, so one pending deletion at a time is
// enough.
var pendingDelete *deleteflow.Flow

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// loadCSRFKey reads the CSRF secret from XCSITE_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("XCSITE_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("XCSITE_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("XCSITE_ENV") == "production" {
		log.Fatal("XCSITE_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (form tokens won't survive restart). Set XCSITE_CSRF_KEY for production.")
	return key
}

// NewMux wires HTTP handlers for the site.
func NewMux(staticDir string, d *Deps) http.Handler {
	deps = d
	pendingDelete = deleteflow.New()

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/schedule", handleSchedule)
	mux.HandleFunc("/runners", handleRunners)
	mux.HandleFunc("/results", handleResults)
	mux.HandleFunc("/contact", handleContact)

	mux.HandleFunc("/admin/login", handleAdminLogin)
	mux.HandleFunc("/admin/logout", handleAdminLogout)

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("/admin/dashboard", handleAdminDashboard)
	adminMux.HandleFunc("/admin/athletes/new", handleAdminAthleteNew)
	adminMux.HandleFunc("/admin/athletes/edit", handleAdminAthleteEdit)
	adminMux.HandleFunc("/admin/athletes/delete", handleAdminAthleteDelete)
	mux.Handle("/admin/", middleware.RequireAdmin(d.Tokens)(adminMux))

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: RequestLog -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.RateLimit(limiter),
		middleware.RequestLog,
	)
}
