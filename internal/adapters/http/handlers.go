package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"xcsite/internal/adapters/email"
	"xcsite/internal/api"
	"xcsite/internal/domain/athlete"
	"xcsite/internal/domain/meet"
	"xcsite/internal/domain/racetime"
	"xcsite/internal/domain/result"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// templatesDir is a variable so tests running from the package directory can
// point it at the local templates folder.
var templatesDir = "internal/adapters/http/templates"

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Site"] = deps.Site

	funcMap := template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"isAdmin":   func() bool { return deps.Tokens.IsPresent() },
		"formatTime": func(seconds int) string {
			return racetime.Format(seconds)
		},
		"gradeSuffix": func(grade int) string {
			if grade == 0 {
				return "-"
			}
			return racetime.GradeSuffix(grade)
		},
		"seasonName": meet.SeasonName,
		"joinEvents": func(events []string) string {
			if len(events) == 0 {
				return "-"
			}
			return strings.Join(events, ", ")
		},
		"initials": func(a athlete.Athlete) string {
			var b strings.Builder
			if a.FirstName != "" {
				b.WriteString(strings.ToUpper(a.FirstName[:1]))
			}
			if a.LastName != "" {
				b.WriteString(strings.ToUpper(a.LastName[:1]))
			}
			return b.String()
		},
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// handleHome renders the landing page: upcoming meets and roster highlights.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	data := map[string]any{}

	meets, err := deps.Client.Meets(ctx)
	if err != nil {
		data["Error"] = "Schedule is unavailable right now."
	} else {
		upcoming := []meet.Meet{}
		for _, m := range meets {
			if m.IsUpcoming(timeNow()) {
				upcoming = append(upcoming, m)
			}
			if len(upcoming) == 2 {
				break
			}
		}
		data["UpcomingMeets"] = upcoming
	}

	athletes, err := deps.Client.Athletes(ctx)
	if err == nil {
		data["RosterCount"] = len(athletes)
	}
	results, err := deps.Client.Results(ctx)
	if err == nil && len(results) > 0 {
		best := result.BestByAthlete(results)
		ranked := racetime.Rank(best)
		if len(ranked) > 0 {
			data["FastestTime"] = racetime.Format(ranked[0].TimeSeconds)
		}
	}

	renderTemplate(w, r, "home.html", data)
}

// handleSchedule renders the meet calendar, filterable by season.
func handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	season := r.URL.Query().Get("season")
	if season != meet.SeasonXC && season != meet.SeasonTrack {
		season = ""
	}

	data := map[string]any{"Season": season}

	meets, err := deps.Client.Meets(r.Context())
	if err != nil {
		data["Error"] = "Could not load the schedule. Please try again."
		renderTemplate(w, r, "schedule.html", data)
		return
	}

	var upcoming, past []meet.Meet
	now := timeNow()
	for _, m := range meets {
		if season != "" && m.Season != season {
			continue
		}
		if m.IsUpcoming(now) {
			upcoming = append(upcoming, m)
		} else {
			past = append(past, m)
		}
	}
	data["Upcoming"] = upcoming
	data["Past"] = past

	renderTemplate(w, r, "schedule.html", data)
}

// runnerView is one roster entry with display extras for the runners page.
type runnerView struct {
	athlete.Athlete
	BestTime string
}

// handleRunners renders the roster, filterable by team and event.
func handleRunners(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	team := strings.TrimSpace(r.URL.Query().Get("team"))
	event := strings.TrimSpace(r.URL.Query().Get("event"))
	data := map[string]any{"Team": team, "Event": event}

	athletes, err := deps.Client.Athletes(r.Context())
	if err != nil {
		data["Error"] = "Could not load the roster. Please try again."
		renderTemplate(w, r, "runners.html", data)
		return
	}

	best := map[string]int{}
	if results, err := deps.Client.Results(r.Context()); err == nil {
		best = result.BestByAthlete(results)
	}

	teams := uniqueTeams(athletes)
	var runners []runnerView
	for _, a := range athletes {
		if team != "" && a.Team != team {
			continue
		}
		if event != "" && !hasEvent(a, event) {
			continue
		}
		v := runnerView{Athlete: a}
		if t, ok := best[a.ID]; ok {
			v.BestTime = racetime.Format(t)
		}
		runners = append(runners, v)
	}
	data["Runners"] = runners
	data["Teams"] = teams

	renderTemplate(w, r, "runners.html", data)
}

// meetResultsView groups one meet's finishers for the results page.
type meetResultsView struct {
	Meet    meet.Meet
	Entries []resultEntryView
}

type resultEntryView struct {
	Name         string
	Grade        int
	TimeSeconds  int
	PlaceOverall int
}

// handleResults renders past race results grouped by meet, plus the team's
// overall ranking by best time.
func handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	data := map[string]any{}

	results, err := deps.Client.Results(ctx)
	if err != nil {
		data["Error"] = "Could not load results. Please try again."
		renderTemplate(w, r, "results.html", data)
		return
	}
	meets, err := deps.Client.Meets(ctx)
	if err != nil {
		data["Error"] = "Could not load results. Please try again."
		renderTemplate(w, r, "results.html", data)
		return
	}
	athletes, err := deps.Client.Athletes(ctx)
	if err != nil {
		data["Error"] = "Could not load results. Please try again."
		renderTemplate(w, r, "results.html", data)
		return
	}

	names := make(map[string]athlete.Athlete, len(athletes))
	for _, a := range athletes {
		names[a.ID] = a
	}

	byMeet := make(map[string][]resultEntryView)
	for _, res := range results {
		a := names[res.AthleteID]
		byMeet[res.MeetID] = append(byMeet[res.MeetID], resultEntryView{
			Name:         a.FullName(),
			Grade:        a.Grade,
			TimeSeconds:  res.TimeSeconds,
			PlaceOverall: res.PlaceOverall,
		})
	}

	var groups []meetResultsView
	for _, m := range meets {
		entries, ok := byMeet[m.ID]
		if !ok {
			continue
		}
		sortEntriesByPlace(entries)
		groups = append(groups, meetResultsView{Meet: m, Entries: entries})
	}
	data["Meets"] = groups

	type rankedView struct {
		Rank int
		Name string
		Time string
	}
	var rankings []rankedView
	for _, rk := range racetime.Rank(result.BestByAthlete(results)) {
		rankings = append(rankings, rankedView{
			Rank: rk.Rank,
			Name: names[rk.ID].FullName(),
			Time: racetime.Format(rk.TimeSeconds),
		})
	}
	data["Rankings"] = rankings

	renderTemplate(w, r, "results.html", data)
}

// handleContact renders the contact form and delivers submissions to the
// coaching staff by email.
func handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		renderTemplate(w, r, "contact.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		name := strings.TrimSpace(r.FormValue("Name"))
		from := strings.TrimSpace(r.FormValue("Email"))
		message := strings.TrimSpace(r.FormValue("Message"))
		if name == "" || from == "" || !strings.Contains(from, "@") || message == "" {
			renderTemplate(w, r, "contact.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "Please fill in your name, a valid email, and a message.",
				"Name":      name,
				"Email":     from,
				"Message":   message,
			})
			return
		}

		_, err := deps.Sender.Send(r.Context(), email.SendRequest{
			To:      []string{deps.Site.ContactEmail},
			Subject: fmt.Sprintf("[%s] Message from %s", deps.Site.ShortName, name),
			HTML: fmt.Sprintf("<p><strong>From:</strong> %s (%s)</p><p>%s</p>",
				template.HTMLEscapeString(name),
				template.HTMLEscapeString(from),
				template.HTMLEscapeString(message)),
			ReplyTo: from,
		})
		if err != nil {
			renderTemplate(w, r, "contact.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "Could not send your message. Please try again later.",
				"Name":      name,
				"Email":     from,
				"Message":   message,
			})
			return
		}

		renderTemplate(w, r, "contact.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Success":   "Thanks! Your message is on its way to the coaches.",
		})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// redirectIfExpired is the single subscriber for the gateway's typed
// session-expired error: it clears nothing itself (the gateway already
// cleared the token store) and sends the viewer to the login page.
// POST: Returns true if the response has been written
func redirectIfExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if errors.Is(err, api.ErrSessionExpired) {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return true
	}
	return false
}

func uniqueTeams(athletes []athlete.Athlete) []string {
	seen := map[string]bool{}
	var teams []string
	for _, a := range athletes {
		if a.Team != "" && !seen[a.Team] {
			seen[a.Team] = true
			teams = append(teams, a.Team)
		}
	}
	return teams
}

func hasEvent(a athlete.Athlete, event string) bool {
	for _, ev := range a.Events {
		if strings.EqualFold(ev, event) {
			return true
		}
	}
	return false
}

// sortEntriesByPlace orders finishers by overall place; entries without a
// recorded place sort after those with one, by time.
func sortEntriesByPlace(entries []resultEntryView) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.PlaceOverall != b.PlaceOverall {
			if a.PlaceOverall == 0 {
				return false
			}
			if b.PlaceOverall == 0 {
				return true
			}
			return a.PlaceOverall < b.PlaceOverall
		}
		return a.TimeSeconds < b.TimeSeconds
	})
}
