package site

import "os"

// Config holds the program identity shown in page chrome and the contact
// address the contact form delivers to.
type Config struct {
	Name         string // full program name, e.g. "Jones County Cross Country"
	ShortName    string // header/nav name
	School       string
	Tagline      string
	ContactEmail string
}

// FromEnv builds a Config from XCSITE_* environment variables with defaults
// for local development.
func FromEnv() Config {
	return Config{
		Name:         envOrDefault("XCSITE_NAME", "Jones County Cross Country"),
		ShortName:    envOrDefault("XCSITE_SHORT_NAME", "JC XC"),
		School:       envOrDefault("XCSITE_SCHOOL", "Jones County High School"),
		Tagline:      envOrDefault("XCSITE_TAGLINE", "Run as one."),
		ContactEmail: envOrDefault("XCSITE_CONTACT_EMAIL", "coach@jonescountyxc.org"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
