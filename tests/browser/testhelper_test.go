package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	emailPkg "xcsite/internal/adapters/email"
	web "xcsite/internal/adapters/http"
	"xcsite/internal/adapters/http/middleware"
	"xcsite/internal/adapters/storage"
	athleteStore "xcsite/internal/adapters/storage/athlete"
	meetStore "xcsite/internal/adapters/storage/meet"
	resultStore "xcsite/internal/adapters/storage/result"
	"xcsite/internal/api"
	"xcsite/internal/apiserver"
	"xcsite/internal/domain/site"
)

const testAdminPassword = "TestPass123!"

// testApp holds the running site, its backend, and Playwright handles.
type testApp struct {
	BaseURL string
	APIURL  string
	DB      *sql.DB
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *apiserver.Stores
	Tokens  api.TokenStore
}

// newTestApp starts the REST backend and the site on free ports with a temp
// SQLite database and seeded demo data.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}

	stores := &apiserver.Stores{
		AthleteStore: athleteStore.NewSQLiteStore(db),
		MeetStore:    meetStore.NewSQLiteStore(db),
		ResultStore:  resultStore.NewSQLiteStore(db),
	}
	if err := apiserver.SeedDemoData(context.Background(), stores); err != nil {
		t.Fatalf("failed to seed demo data: %v", err)
	}

	backend, err := apiserver.NewServer(stores, testAdminPassword)
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	apiPort := freePort(t)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", apiPort),
		Handler: backend.Handler(),
	}
	go func() {
		if err := apiSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test backend error: %v", err)
		}
	}()
	apiURL := fmt.Sprintf("http://127.0.0.1:%d", apiPort)
	waitForServer(t, apiURL+"/api/health")

	sitePort := freePort(t)

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", sitePort),
		fmt.Sprintf("localhost:%d", sitePort),
	)

	tokens := api.NewFileTokenStore(filepath.Join(tmpDir, "token"))
	gw := api.NewGateway(apiURL, tokens, nil)
	mux := web.NewMux("static", &web.Deps{
		Site:   site.FromEnv(),
		Client: api.NewClient(gw, tokens),
		Roster: api.NewRoster(gw),
		Tokens: tokens,
		Sender: emailPkg.NewNoopSender(),
	})
	siteSrv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", sitePort),
		Handler: mux,
	}
	go func() {
		if err := siteSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test site error: %v", err)
		}
	}()
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", sitePort)
	waitForServer(t, baseURL+"/")

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		APIURL:  apiURL,
		DB:      db,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		Tokens:  tokens,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		siteSrv.Close()
		apiSrv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login navigates to the admin login page and signs in.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/admin/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=Password]").Fill(testAdminPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/admin/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port
}

func waitForServer(t *testing.T, url string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server at %s did not come up", url)
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
