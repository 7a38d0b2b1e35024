package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	"xcsite/internal/adapters/storage"
	athleteStore "xcsite/internal/adapters/storage/athlete"
	meetStore "xcsite/internal/adapters/storage/meet"
	resultStore "xcsite/internal/adapters/storage/result"
	"xcsite/internal/apiserver"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// WAL mode, foreign keys, and a busy timeout keep concurrent site reads
	// from tripping over admin writes.
	dbPath := envOrDefault("XCSITE_DB", "xcsite.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	stores := &apiserver.Stores{
		AthleteStore: athleteStore.NewSQLiteStore(db),
		MeetStore:    meetStore.NewSQLiteStore(db),
		ResultStore:  resultStore.NewSQLiteStore(db),
	}

	// Seed demo data for development only
	if os.Getenv("XCSITE_ENV") != "production" {
		if err := apiserver.SeedDemoData(context.Background(), stores); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		log.Println("Demo seed data loaded (dev mode)")
	}

	adminPassword := envOrDefault("XCSITE_ADMIN_PASSWORD", "trackspikes")
	srv, err := apiserver.NewServer(stores, adminPassword)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	addr := envOrDefault("XCSITE_API_ADDR", ":8080")
	log.Printf("API %s starting on %s (env=%s)", version, addr, envOrDefault("XCSITE_ENV", "development"))

	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
