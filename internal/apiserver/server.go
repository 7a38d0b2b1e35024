// Package apiserver is the REST backend the site consumes: athlete CRUD
// behind a bearer token, read-only meets and results, and the admin login
// exchange. It exists so local development and the browser tests have a real
// backend speaking the same contract as the deployed one.
package apiserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	athleteStore "xcsite/internal/adapters/storage/athlete"
	meetStore "xcsite/internal/adapters/storage/meet"
	resultStore "xcsite/internal/adapters/storage/result"
	athleteDomain "xcsite/internal/domain/athlete"
)

// Stores holds the storage dependencies for the API.
type Stores struct {
	AthleteStore athleteStore.Store
	MeetStore    meetStore.Store
	ResultStore  resultStore.Store
}

// Server serves the REST API.
type Server struct {
	stores       *Stores
	sessions     *SessionStore
	passwordHash []byte
}

// NewServer creates a Server whose admin login accepts the given password.
// PRE: adminPassword is non-empty
// POST: Returns a ready-to-use server; the password is held only as a bcrypt hash
func NewServer(stores *Stores, adminPassword string) (*Server, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
	if err != nil {
		return nil, err
	}
	return &Server{
		stores:       stores,
		sessions:     NewSessionStore(),
		passwordHash: hash,
	}, nil
}

// Handler returns the API routes wrapped in CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/admin/login", s.handleLogin)
	mux.HandleFunc("/api/athletes", s.handleAthletes)
	mux.HandleFunc("/api/athletes/", s.handleAthleteByID)
	mux.HandleFunc("/api/meets", s.handleMeets)
	mux.HandleFunc("/api/results", s.handleResults)
	return enableCORS(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Server is running",
		"timestamp": time.Now(),
	})
}

// handleLogin exchanges the admin password for a bearer token.
// POST /api/admin/login {"password": "..."} -> 200 {"token": "..."} | 401
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(body.Password)); err != nil {
		slog.Info("auth_event", "event", "login_failed")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := s.sessions.Create()
	if err != nil {
		internalError(w, err)
		return
	}
	slog.Info("auth_event", "event", "login_success")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleAthletes serves GET (public list) and POST (authenticated create).
func (s *Server) handleAthletes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		athletes, err := s.stores.AthleteStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, athletes)

	case http.MethodPost:
		if !s.authorized(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		var payload athleteDomain.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := payload.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		record := athleteDomain.Athlete{
			ID:        uuid.New().String(),
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Grade:     payload.Grade,
			Team:      payload.Team,
			Events:    payload.Events,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.stores.AthleteStore.Save(ctx, record); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAthleteByID serves PUT and DELETE for /api/athletes/{id}.
func (s *Server) handleAthleteByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimPrefix(r.URL.Path, "/api/athletes/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if !s.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPut:
		existing, err := s.stores.AthleteStore.GetByID(ctx, id)
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		var payload athleteDomain.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := payload.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		existing.FirstName = payload.FirstName
		existing.LastName = payload.LastName
		existing.Grade = payload.Grade
		existing.Team = payload.Team
		existing.Events = payload.Events
		existing.UpdatedAt = time.Now().UTC()
		if err := s.stores.AthleteStore.Save(ctx, existing); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, existing)

	case http.MethodDelete:
		if _, err := s.stores.AthleteStore.GetByID(ctx, id); err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err := s.stores.ResultStore.DeleteByAthlete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		if err := s.stores.AthleteStore.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMeets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	meets, err := s.stores.MeetStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meets)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	results, err := s.stores.ResultStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// authorized checks the bearer token against the session store.
func (s *Server) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}
	return s.sessions.Valid(token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// internalError logs the real error and returns a generic message.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// enableCORS allows the site to call the API from another origin.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
