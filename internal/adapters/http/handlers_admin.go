package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"xcsite/internal/api"
	"xcsite/internal/application/deleteflow"
	"xcsite/internal/domain/athlete"
)

// handleAdminLogin handles GET (form) and POST (exchange) for /admin/login.
// The exchange goes through the gateway in skip-expiry mode, so a wrong
// password renders inline instead of bouncing through the logout redirect.
func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// Already authenticated viewers go straight to the dashboard
		if deps.Tokens.IsPresent() {
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "admin_login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		_, err := deps.Client.Login(r.Context(), r.FormValue("Password"))
		if err != nil {
			message := "Login failed. Please try again later."
			if errors.Is(err, api.ErrInvalidCredentials) {
				message = "Invalid password. Please try again."
			}
			renderTemplate(w, r, "admin_login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     message,
			})
			return
		}

		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminLogout handles POST /admin/logout.
func handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := deps.Client.Logout(); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// handleAdminDashboard renders the athlete roster with the three mutually
// exclusive list states: the populated table, the empty-state message, or an
// error banner with a retry link. A pending delete confirmation overlays the
// list.
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data := map[string]any{"CSRFToken": csrf.Token(r)}

	athletes, err := deps.Roster.Load(r.Context())
	if err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		data["Error"] = "Failed to load athletes."
		renderTemplate(w, r, "admin_dashboard.html", data)
		return
	}
	data["Athletes"] = athletes

	if pendingDelete.State() == deleteflow.StatePending {
		if target, ok := deps.Roster.Get(pendingDelete.Target()); ok {
			data["ConfirmTarget"] = target
		} else {
			// Record disappeared between marking and rendering
			pendingDelete.Cancel()
		}
	}

	renderTemplate(w, r, "admin_dashboard.html", data)
}

// handleAdminAthleteNew handles GET (blank form) and POST (create).
func handleAdminAthleteNew(w http.ResponseWriter, r *http.Request) {
	handleAdminAthleteForm(w, r, "")
}

// handleAdminAthleteEdit handles GET (prefilled form) and POST (update) for
// /admin/athletes/edit?id=<id>.
func handleAdminAthleteEdit(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	handleAdminAthleteForm(w, r, id)
}

// handleAdminAthleteForm is the shared create/edit handler. Mode is
// determined solely by whether an id was supplied; failure handling is
// identical in both modes.
func handleAdminAthleteForm(w http.ResponseWriter, r *http.Request, id string) {
	editing := id != ""

	if editing && !deps.Roster.Loaded() {
		if _, err := deps.Roster.Load(r.Context()); err != nil {
			if redirectIfExpired(w, r, err) {
				return
			}
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
	}

	if r.Method == "GET" {
		data := map[string]any{
			"CSRFToken": csrf.Token(r),
			"Editing":   editing,
		}
		if editing {
			record, ok := deps.Roster.Get(id)
			if !ok {
				http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
				return
			}
			data["ID"] = record.ID
			data["FirstName"] = record.FirstName
			data["LastName"] = record.LastName
			if record.Grade != 0 {
				data["Grade"] = record.Grade
			}
			data["Team"] = record.Team
			data["Events"] = strings.Join(record.Events, ", ")
		}
		renderTemplate(w, r, "admin_athlete_form.html", data)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		payload := athlete.ParseForm(
			r.FormValue("FirstName"),
			r.FormValue("LastName"),
			r.FormValue("Grade"),
			r.FormValue("Team"),
			r.FormValue("Events"),
		)

		fail := func(message string) {
			renderTemplate(w, r, "admin_athlete_form.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Editing":   editing,
				"ID":        id,
				"Error":     message,
				"FirstName": r.FormValue("FirstName"),
				"LastName":  r.FormValue("LastName"),
				"Grade":     r.FormValue("Grade"),
				"Team":      r.FormValue("Team"),
				"Events":    r.FormValue("Events"),
			})
		}

		if err := payload.Validate(); err != nil {
			fail(err.Error())
			return
		}

		var err error
		if editing {
			_, err = deps.Roster.Update(r.Context(), id, payload)
		} else {
			_, err = deps.Roster.Create(r.Context(), payload)
		}
		if err != nil {
			if redirectIfExpired(w, r, err) {
				return
			}
			fail(err.Error())
			return
		}

		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminAthleteDelete drives the two-step confirmation flow:
// action=begin marks a record, action=cancel clears the marker, and
// action=confirm performs the delete. A failed delete clears the marker and
// surfaces a page-level banner, distinct from the form's inline error.
func handleAdminAthleteDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	switch r.FormValue("action") {
	case "begin":
		id := r.FormValue("id")
		if id == "" {
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
		if err := pendingDelete.Begin(id); err != nil {
			// A delete is already in flight; the dashboard re-renders its state.
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)

	case "cancel":
		pendingDelete.Cancel()
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)

	case "confirm":
		id, err := pendingDelete.Start()
		if err != nil {
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
		deleteErr := deps.Roster.Delete(r.Context(), id)
		pendingDelete.Finish()
		if deleteErr != nil {
			if redirectIfExpired(w, r, deleteErr) {
				return
			}
			data := map[string]any{
				"CSRFToken":   csrf.Token(r),
				"Athletes":    deps.Roster.Athletes(),
				"DeleteError": "Failed to delete athlete.",
			}
			renderTemplate(w, r, "admin_dashboard.html", data)
			return
		}
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)

	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
	}
}
