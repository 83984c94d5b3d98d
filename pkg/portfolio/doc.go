// Package portfolio computes the two portfolio reports, GitHub statistics
// and project cards, for a GitHub user.
//
// A [Service] lists the user's repositories, keeps the public, non-fork,
// non-archived ones and analyses each of them concurrently: language byte
// counts, manifest dependencies normalized to technology labels, and the
// keyword heuristics of package classify. Per-repository failures are logged
// and skipped; only listing the repositories is fatal.
//
// Computed reports are cached for [DefaultCacheTTL] and saved as snapshots so
// that a caller can serve the last good report when GitHub is unavailable:
//
//	svc := portfolio.New(gh, c, store, logger, portfolio.Options{})
//	st, err := svc.Stats(ctx, "octocat")
//	if err != nil {
//	    var stale stats.Stats
//	    snap, serr := svc.Snapshot(ctx, snapshot.KindStats, "octocat", &stale)
//	    ...
//	}
package portfolio
