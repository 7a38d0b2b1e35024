package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	emailPkg "xcsite/internal/adapters/email"
	web "xcsite/internal/adapters/http"
	"xcsite/internal/api"
	"xcsite/internal/domain/site"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	siteCfg := site.FromEnv()

	// Token store persists the admin session token across restarts.
	tokenPath := envOrDefault("XCSITE_TOKEN_FILE", filepath.Join(os.TempDir(), "xcsite-admin-token"))
	tokens := api.NewFileTokenStore(tokenPath)

	apiURL := envOrDefault("XCSITE_API_URL", "http://localhost:8080")
	gateway := api.NewGateway(apiURL, tokens, nil)
	client := api.NewClient(gateway, tokens)
	roster := api.NewRoster(gateway)

	// Configure email sender for the contact form
	var sender emailPkg.Sender
	resendKey := os.Getenv("XCSITE_RESEND_KEY")
	emailFrom := envOrDefault("XCSITE_RESEND_FROM", siteCfg.Name+" <noreply@jonescountyxc.org>")
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("XCSITE_ENV") == "production" {
			log.Println("WARNING: XCSITE_RESEND_KEY is not set — contact form delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set XCSITE_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux("static", &web.Deps{
		Site:   siteCfg,
		Client: client,
		Roster: roster,
		Tokens: tokens,
		Sender: sender,
	})

	addr := envOrDefault("XCSITE_ADDR", ":3000")
	log.Printf("%s site %s starting on %s (api=%s, env=%s)", siteCfg.ShortName, version, addr, apiURL, envOrDefault("XCSITE_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
