package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghfolio/pkg/portfolio"
	"github.com/matzehuels/ghfolio/pkg/projects"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
	"github.com/matzehuels/ghfolio/pkg/stats"
)

// reportFlags are shared by the stats and projects commands.
type reportFlags struct {
	noCache   bool
	refresh   bool
	json      bool
	manifests []string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached reports and API responses")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the API payload as JSON")
	cmd.Flags().StringSliceVar(&f.manifests, "manifests", nil, "manifest types to crawl (e.g. package.json,go.mod)")
}

// prepare applies flag overrides to the configuration and builds a backend.
func (c *CLI) prepare(ctx context.Context, f *reportFlags) (*backend, error) {
	if len(f.manifests) > 0 {
		c.cfg.Manifests = f.manifests
	}
	return c.newBackend(ctx, backendOptions{noCache: f.noCache, refresh: f.refresh})
}

// =============================================================================
// stats
// =============================================================================

func (c *CLI) statsCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "stats [username]",
		Short: "Aggregate language and technology statistics for a GitHub user",
		Long: `Aggregate language bytes, language presence and technologies from manifest
files across a user's public, non-fork, non-archived repositories.

Without a username the configured default user (GITHUB_USERNAME) is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := c.username(args)

			b, err := c.prepare(ctx, &flags)
			if err != nil {
				return err
			}
			defer b.Close()

			var st *stats.Stats
			stale, err := c.collect(ctx, b, snapshot.KindStats, user, func(ctx context.Context) error {
				var err error
				st, err = b.service.Stats(ctx, user)
				return err
			}, &st)
			if err != nil {
				return err
			}

			if flags.json {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(user, st, stale))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// renderStats formats a stats report as headed tables.
func renderStats(user string, st *stats.Stats, stale bool) string {
	var b strings.Builder

	title := "GitHub statistics for " + user
	if stale {
		title += " " + StyleWarning.Render("("+iconStale+")")
	}
	b.WriteString(StyleTitle.Render(title) + "\n\n")

	b.WriteString(renderKeyValue("Repositories", strconv.Itoa(st.TotalRepos)) + "\n")
	b.WriteString(renderKeyValue("Stars", strconv.Itoa(st.TotalStars)) + "\n")
	b.WriteString(renderKeyValue("REST APIs", strconv.Itoa(st.APIRestCount)) + "\n")
	b.WriteString(renderKeyValue("CRUD apps", strconv.Itoa(st.CRUDCount)) + "\n")
	b.WriteString(renderKeyValue("Fullstack", strconv.Itoa(st.FullstackCount)) + "\n")

	if len(st.LanguageSkills) > 0 {
		rows := make([][]string, len(st.LanguageSkills))
		for i, l := range st.LanguageSkills {
			rows[i] = []string{l.Name, formatBytes(l.Bytes), fmt.Sprintf("%3d%%", l.Level), levelBar(l.Level)}
		}
		b.WriteString("\n" + StyleTitle.Render("Languages by code") + "\n")
		b.WriteString(renderTable([]string{"Language", "Bytes", "Level", ""}, rows, true) + "\n")
	}

	if len(st.LanguagePresence) > 0 {
		rows := make([][]string, len(st.LanguagePresence))
		for i, l := range st.LanguagePresence {
			rows[i] = []string{l.Name, strconv.Itoa(l.Repos), fmt.Sprintf("%3d%%", l.Percent)}
		}
		b.WriteString("\n" + StyleTitle.Render("Languages by repository") + "\n")
		b.WriteString(renderTable([]string{"Language", "Repos", "Share"}, rows, true) + "\n")
	}

	if len(st.TechSkills) > 0 {
		rows := make([][]string, len(st.TechSkills))
		for i, t := range st.TechSkills {
			rows[i] = []string{t.Name, strconv.Itoa(t.Count), fmt.Sprintf("%3d%%", t.Level), levelBar(t.Level)}
		}
		b.WriteString("\n" + StyleTitle.Render("Technologies") + "\n")
		b.WriteString(renderTable([]string{"Technology", "Repos", "Level", ""}, rows, true) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// =============================================================================
// projects
// =============================================================================

func (c *CLI) projectsCommand() *cobra.Command {
	var (
		flags  reportFlags
		browse bool
	)

	cmd := &cobra.Command{
		Use:   "projects [username]",
		Short: "Build portfolio project cards from a user's repositories",
		Long: `Build project cards for the most recently updated repositories of a user,
classified into mobile, backend, frontend and fullstack and ordered by stars
and recency.

Use --browse to pick a project interactively and print its details.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := c.username(args)

			b, err := c.prepare(ctx, &flags)
			if err != nil {
				return err
			}
			defer b.Close()

			var report *portfolio.ProjectsReport
			stale, err := c.collect(ctx, b, snapshot.KindProjects, user, func(ctx context.Context) error {
				var err error
				report, err = b.service.Projects(ctx, user)
				return err
			}, &report)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case flags.json:
				return writeJSON(out, report)
			case browse && len(report.Projects) > 0:
				return browseProjects(ctx, out, report.Projects)
			}
			fmt.Fprintln(out, renderProjects(user, report.Projects, stale))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&browse, "browse", "b", false, "browse projects interactively")
	return cmd
}

// renderProjects formats project cards as a table.
func renderProjects(user string, list []projects.Project, stale bool) string {
	title := fmt.Sprintf("Projects of %s", user)
	if stale {
		title += " " + StyleWarning.Render("("+iconStale+")")
	}
	if len(list) == 0 {
		return StyleTitle.Render(title) + "\n" + StyleDim.Render("  no public repositories")
	}

	rows := make([][]string, len(list))
	for i, p := range list {
		rows[i] = []string{
			p.Title,
			strconv.Itoa(p.Stars),
			p.Language,
			strings.Join(p.Categories, ", "),
			p.LastUpdate,
		}
	}
	return StyleTitle.Render(title) + "\n" +
		renderTable([]string{"Project", "Stars", "Language", "Categories", "Updated"}, rows, false)
}

// renderProject formats the details of a single project card.
func renderProject(p projects.Project) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(p.Title) + "\n")
	b.WriteString("  " + StyleValue.Render(p.Description) + "\n")
	b.WriteString("  " + StyleDim.Render(strings.Join(p.Technologies, " · ")) + "\n")
	b.WriteString(renderLink("github", p.GitHub) + "\n")
	b.WriteString(renderLink("demo  ", p.Demo))
	return b.String()
}

func browseProjects(ctx context.Context, w io.Writer, list []projects.Project) error {
	final, err := tea.NewProgram(NewProjectListModel(list), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	m, ok := final.(ProjectListModel)
	if !ok || m.Selected == nil {
		return nil
	}
	fmt.Fprintln(w, renderProject(*m.Selected))
	return nil
}

// =============================================================================
// Shared helpers
// =============================================================================

// collect runs fn behind a spinner. When live collection fails for any reason
// other than cancellation, the latest snapshot of the report is decoded into
// fallback instead and stale is true.
func (c *CLI) collect(ctx context.Context, b *backend, kind snapshot.Kind, user string, fn func(context.Context) error, fallback any) (stale bool, err error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spinner := newSpinner(ctx, fmt.Sprintf("Collecting %s for %s...", kind, user))
	spinner.Start()
	err = fn(ctx)
	spinner.Stop()

	if err == nil {
		prog.done(fmt.Sprintf("Collected %s for %s", kind, user))
		return false, nil
	}
	if spinner.Cancelled() || errors.Is(err, context.Canceled) {
		return false, err
	}

	snap, serr := b.service.Snapshot(ctx, kind, user, fallback)
	if serr != nil {
		return false, err
	}
	logger.Warn("live collection failed, showing snapshot",
		"error", err,
		"taken", snap.CreatedAt.Local().Format(time.DateTime))
	return true, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
