// Package api serves the portfolio reports over HTTP.
//
// Routes:
//
//	GET /api/github-stats?username=<login>     statistics report
//	GET /api/github-projects?username=<login>  {"projects": [...]}
//	GET /healthz                               {"status":"ok","version":...}
//
// The username query parameter falls back to the configured default. Reports
// are sent with "Cache-Control: s-maxage=1800, stale-while-revalidate=86400".
// When computing a report fails and a snapshot exists, the snapshot is
// served with "X-Ghfolio-Stale: true"; otherwise the error is answered with
// {"error": "..."} and a status derived from its code (400 for bad input,
// 503 with Retry-After when GitHub rate limits, 500 otherwise).
//
// With a static directory configured, every other GET is served from it and
// unknown paths fall back to index.html so that client-side routing works.
package api
