package middleware

import (
	"net/http"

	"xcsite/internal/api"
)

// RequireAdmin guards the admin area. A viewer without a stored backend token
// is sent to the login page with a 303 redirect so the guarded URL never
// enters browser history as a renderable page.
func RequireAdmin(tokens api.TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.IsPresent() {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
