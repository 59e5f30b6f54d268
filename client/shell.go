package client

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"

	"billboard-service/models"
)

// Page identifies a top-level view of the application shell.
type Page int

const (
	PageLoggedOut Page = iota
	PageDashboard
	PageInspect
	PageProfile
	PageMap
	PageReportDetail
)

// Route is the shell's resolved navigation target.
type Route struct {
	Page     Page
	ReportID int64
}

// ReportAPI is the slice of the repository client the shell consumes.
type ReportAPI interface {
	ListMine(ctx context.Context) []models.Report
	AnalyzeHybrid(ctx context.Context, filename string, image io.Reader, lat, lon float64) (*models.Report, error)
	UpdateStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, error)
}

// Shell drives the navigation state machine of the inspector app. The
// host supplies a navigate hook that mirrors route changes into its own
// location handling; the shell guards against rewrite loops by only
// invoking it when the fragment actually needs to change.
type Shell struct {
	mu       sync.Mutex
	session  *Session
	api      ReportAPI
	navigate func(fragment string)
	route    Route
	reports  []models.Report
}

// NewShell restores the session and resolves the initial route: a valid
// stored token lands on the dashboard with one report fetch, anything
// else lands on the login page.
func NewShell(ctx context.Context, session *Session, api ReportAPI, navigate func(string)) *Shell {
	if navigate == nil {
		navigate = func(string) {}
	}
	s := &Shell{
		session:  session,
		api:      api,
		navigate: navigate,
		route:    Route{Page: PageLoggedOut},
		reports:  []models.Report{},
	}
	if session.CurrentUser() != nil {
		s.route = Route{Page: PageDashboard}
		s.reports = api.ListMine(ctx)
	}
	return s
}

// Route returns the current navigation target.
func (s *Shell) Route() Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

// Reports returns a snapshot of the last fetched report list.
func (s *Shell) Reports() []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// HandleFragmentChanged resolves a location fragment into a route.
// Without a valid session every fragment resolves to the login page.
// Unknown fragments fall back to the dashboard and rewrite the fragment
// once so the location matches the rendered page.
func (s *Shell) HandleFragmentChanged(fragment string) {
	s.mu.Lock()
	var rewrite string
	if s.session.CurrentUser() == nil {
		s.route = Route{Page: PageLoggedOut}
		if fragment != "#/login" {
			rewrite = "#/login"
		}
	} else {
		route, canonical, ok := parseFragment(fragment)
		s.route = route
		if !ok && fragment != canonical {
			rewrite = canonical
		}
	}
	s.mu.Unlock()

	// The hook runs outside the lock: hosts may call back into the
	// shell synchronously.
	if rewrite != "" {
		s.navigate(rewrite)
	}
}

// parseFragment maps a fragment to a route. ok is false when the
// fragment did not match any known page and the dashboard fallback was
// used; canonical is the fragment the resolved route belongs at.
func parseFragment(fragment string) (Route, string, bool) {
	switch fragment {
	case "#/dashboard", "#/", "", "#":
		return Route{Page: PageDashboard}, "#/dashboard", fragment == "#/dashboard"
	case "#/inspect":
		return Route{Page: PageInspect}, fragment, true
	case "#/profile":
		return Route{Page: PageProfile}, fragment, true
	case "#/map":
		return Route{Page: PageMap}, fragment, true
	case "#/login":
		// Logged-in users have no business on the login page.
		return Route{Page: PageDashboard}, "#/dashboard", false
	}
	if rest, found := strings.CutPrefix(fragment, "#/report/"); found {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil && id > 0 {
			return Route{Page: PageReportDetail, ReportID: id}, fragment, true
		}
	}
	return Route{Page: PageDashboard}, "#/dashboard", false
}

// HandleLogin is called by the host after Client.Login succeeded. It
// performs the single post-login fetch and moves to the dashboard.
func (s *Shell) HandleLogin(ctx context.Context) {
	s.mu.Lock()
	s.reports = s.api.ListMine(ctx)
	s.route = Route{Page: PageDashboard}
	s.mu.Unlock()
	s.navigate("#/dashboard")
}

// Logout drops the stored token, clears cached reports and returns to
// the login page.
func (s *Shell) Logout() {
	s.mu.Lock()
	s.session.Logout()
	s.reports = []models.Report{}
	s.route = Route{Page: PageLoggedOut}
	s.mu.Unlock()
	s.navigate("#/login")
}

// Refresh re-fetches the report list.
func (s *Shell) Refresh(ctx context.Context) {
	reports := s.api.ListMine(ctx)
	s.mu.Lock()
	s.reports = reports
	s.mu.Unlock()
}

// SubmitInspection uploads an image for analysis and refreshes the
// list on success.
func (s *Shell) SubmitInspection(ctx context.Context, filename string, image io.Reader, lat, lon float64) (*models.Report, error) {
	report, err := s.api.AnalyzeHybrid(ctx, filename, image, lat, lon)
	if err != nil {
		return nil, err
	}
	s.Refresh(ctx)
	return report, nil
}

// SubmitToMunicipality flips a report to Reported and refreshes the
// list on success.
func (s *Shell) SubmitToMunicipality(ctx context.Context, id int64) (*models.Report, error) {
	report, err := s.api.UpdateStatus(ctx, id, models.StatusReported)
	if err != nil {
		return nil, err
	}
	s.Refresh(ctx)
	return report, nil
}
