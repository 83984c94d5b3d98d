package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/ghfolio/pkg/cache"
	errs "github.com/matzehuels/ghfolio/pkg/errors"
	"github.com/matzehuels/ghfolio/pkg/integrations/github"
	"github.com/matzehuels/ghfolio/pkg/manifest"
	"github.com/matzehuels/ghfolio/pkg/observability"
	"github.com/matzehuels/ghfolio/pkg/projects"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
)

// Defaults for [Options].
const (
	DefaultCacheTTL    = 30 * time.Minute
	DefaultConcurrency = 4
)

const tracerName = "github.com/matzehuels/ghfolio/pkg/portfolio"

// GitHub is the subset of the GitHub client the service needs.
type GitHub interface {
	manifest.Source
	ListUserRepos(ctx context.Context, user string) ([]github.Repo, error)
	ListLanguages(ctx context.Context, owner, repo string) ([]github.LanguageBytes, error)
}

// Options configures a [Service]. Zero values select the defaults.
type Options struct {
	Parsers      []manifest.Parser // manifest parsers, defaults to package.json only
	MaxManifests int               // manifests read per repository, defaults to 25
	MaxProjects  int               // repositories turned into project cards, defaults to 20
	Concurrency  int               // repositories analysed at once, defaults to 4
	CacheTTL     time.Duration     // lifetime of cached reports
	Refresh      bool              // recompute reports even when cached
	Keyer        cache.Keyer
	Projects     projects.Options
}

// Service computes portfolio reports.
type Service struct {
	gh        GitHub
	cache     cache.Cache
	keyer     cache.Keyer
	snapshots snapshot.Store
	crawler   *manifest.Crawler
	logger    *log.Logger
	tracer    trace.Tracer
	opts      Options
	group     singleflight.Group
}

// New creates a Service. A nil cache disables report caching and a nil store
// disables snapshots.
func New(gh GitHub, c cache.Cache, store snapshot.Store, logger *log.Logger, opts Options) *Service {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if len(opts.Parsers) == 0 {
		opts.Parsers = manifest.Default()
	}
	if opts.MaxManifests <= 0 {
		opts.MaxManifests = manifest.DefaultLimit
	}
	if opts.MaxProjects <= 0 {
		opts.MaxProjects = projects.MaxRepos
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	keyer := opts.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Service{
		gh:        gh,
		cache:     c,
		keyer:     keyer,
		snapshots: store,
		crawler:   manifest.NewCrawler(gh, opts.Parsers, logger).WithLimit(opts.MaxManifests),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		opts:      opts,
	}
}

// Snapshot decodes the latest stored report of kind for username into v.
// It returns an error with code SNAPSHOT_NOT_FOUND when none exists.
func (s *Service) Snapshot(ctx context.Context, kind snapshot.Kind, username string, v any) (*snapshot.Snapshot, error) {
	if s.snapshots == nil {
		return nil, errs.New(errs.ErrCodeSnapshotNotFound, "snapshots are disabled")
	}
	snap, err := s.snapshots.Latest(ctx, kind, username)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, errs.Wrap(errs.ErrCodeSnapshotNotFound, err, "no %s snapshot for %s", kind, username)
	}
	if err != nil {
		return nil, err
	}
	if err := snap.Decode(v); err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", kind, err)
	}
	return snap, nil
}

// report runs compute at most once per key at a time, caching and
// snapshotting its result. A caller that gives up does not cancel the
// computation for the others.
func (s *Service) report(ctx context.Context, kind snapshot.Kind, username string, out any, compute func(ctx context.Context) (any, int, error)) error {
	if err := errs.ValidateUsername(username); err != nil {
		return err
	}

	key := s.keyer.ReportKey(string(kind), username, cache.ReportKeyOpts{
		MaxProjects:  s.opts.MaxProjects,
		MaxManifests: s.opts.MaxManifests,
		Manifests:    parserTypes(s.opts.Parsers),
	})

	if !s.opts.Refresh {
		if data, ok, _ := s.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(data, out); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// The shared computation outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := s.group.DoChan(key, func() (any, error) {
		ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "portfolio."+string(kind), trace.WithAttributes(
			attribute.String("github.user", username),
		))
		defer span.End()

		start := time.Now()
		observability.Collect().OnCollectStart(ctx, string(kind), username)
		result, repos, err := compute(ctx)
		observability.Collect().OnCollectComplete(ctx, string(kind), username, repos, time.Since(start), err)
		span.SetAttributes(attribute.Int("github.repos", repos))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kind, err)
		}
		if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
			s.logger.Warn("caching report failed", "kind", kind, "user", username, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", len(data))
		}
		if s.snapshots != nil {
			if _, err := s.snapshots.Save(ctx, kind, username, data); err != nil {
				s.logger.Warn("saving snapshot failed", "kind", kind, "user", username, "err", err)
			}
		}
		return data, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), out)
	}
}

// relevantRepos lists the repositories of username that belong on a
// portfolio: public, not forks and not archived. Listing errors are fatal.
func (s *Service) relevantRepos(ctx context.Context, username string) ([]github.Repo, error) {
	repos, err := s.gh.ListUserRepos(ctx, username)
	if err != nil {
		if errs.Is(err, errs.ErrCodeRateLimited) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeUpstream, err, "listing repositories of %s", username)
	}
	out := make([]github.Repo, 0, len(repos))
	for _, r := range repos {
		if r.IsPublic() && !r.Fork && !r.Archived {
			out = append(out, r)
		}
	}
	return out, nil
}

// forEach runs fn for every repository with bounded concurrency. fn reports
// whether its result should be kept; results come back in repository order.
func forEach[T any](ctx context.Context, limit int, repos []github.Repo, fn func(context.Context, github.Repo) (T, bool)) ([]T, error) {
	results := make([]T, len(repos))
	keep := make([]bool, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], keep[i] = fn(gctx, repo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(results))
	for i, r := range results {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out, nil
}

// skip logs a failed stage of a repository.
func (s *Service) skip(ctx context.Context, repo, stage string, err error) {
	s.logger.Debug("skipping", "repo", repo, "stage", stage, "err", err)
	observability.Collect().OnRepoSkipped(ctx, repo, stage, err)
}

func parserTypes(parsers []manifest.Parser) []string {
	out := make([]string, len(parsers))
	for i, p := range parsers {
		out[i] = p.Type()
	}
	return out
}
