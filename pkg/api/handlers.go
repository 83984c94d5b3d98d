package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/ghfolio/pkg/buildinfo"
	errs "github.com/matzehuels/ghfolio/pkg/errors"
	"github.com/matzehuels/ghfolio/pkg/portfolio"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
	"github.com/matzehuels/ghfolio/pkg/stats"
)

// Messages for failed reports. Internal error details are logged, not sent.
const (
	msgStatsFailed    = "Failed to generate GitHub stats"
	msgProjectsFailed = "Failed to fetch GitHub projects"
	msgRateLimited    = "GitHub API rate limit exceeded"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user, err := s.username(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errs.UserMessage(err))
		return
	}
	st, err := s.reports.Stats(r.Context(), user)
	if err != nil {
		s.fail(w, r, snapshot.KindStats, user, err, &stats.Stats{}, msgStatsFailed)
		return
	}
	writeReport(w, st)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	user, err := s.username(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errs.UserMessage(err))
		return
	}
	report, err := s.reports.Projects(r.Context(), user)
	if err != nil {
		s.fail(w, r, snapshot.KindProjects, user, err, &portfolio.ProjectsReport{}, msgProjectsFailed)
		return
	}
	writeReport(w, report)
}

// username returns the trimmed username query parameter or the configured
// default.
func (s *Server) username(r *http.Request) (string, error) {
	user := strings.TrimSpace(r.URL.Query().Get("username"))
	if user == "" {
		user = s.opts.DefaultUsername
	}
	if err := errs.ValidateUsername(user); err != nil {
		return "", err
	}
	return user, nil
}

// fail answers a failed report with the latest snapshot when one exists, and
// with an error otherwise. stale must be a pointer to the report type.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, kind snapshot.Kind, user string, err error, stale any, msg string) {
	status := errs.HTTPStatus(err)
	if status == http.StatusBadRequest {
		writeError(w, status, errs.UserMessage(err))
		return
	}
	s.logger.Error("report failed", "kind", kind, "user", user, "err", err, "request_id", RequestIDFromContext(r.Context()))

	// The client is gone.
	if errors.Is(r.Context().Err(), context.Canceled) {
		return
	}

	if snap, serr := s.reports.Snapshot(context.WithoutCancel(r.Context()), kind, user, stale); serr == nil {
		s.logger.Warn("serving stale snapshot", "kind", kind, "user", user, "age", snap.Age(time.Now()).Round(time.Second))
		w.Header().Set(StaleHeader, "true")
		w.Header().Set(SnapshotHeader, snap.CreatedAt.Format(time.RFC3339))
		w.Header().Set("Cache-Control", "no-cache")
		writeJSON(w, http.StatusOK, stale)
		return
	}

	var rl *errs.RateLimitedError
	switch {
	case errors.As(err, &rl):
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
		}
		writeError(w, http.StatusServiceUnavailable, msgRateLimited)
	case status == http.StatusInternalServerError:
		writeError(w, status, msg)
	default:
		writeError(w, status, errs.UserMessage(err))
	}
}

func writeReport(w http.ResponseWriter, v any) {
	w.Header().Set("Cache-Control", CacheControl)
	writeJSON(w, http.StatusOK, v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
