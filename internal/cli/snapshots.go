package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/ghfolio/pkg/errors"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
)

func (c *CLI) snapshotsCommand() *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "snapshots [username]",
		Short: "List saved report snapshots",
		Long: `List the report snapshots saved for a user, newest first. Snapshots are
written after every successful collection and shown when GitHub is unavailable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := c.username(args)
			if err := errs.ValidateUsername(user); err != nil {
				return err
			}

			kinds := []snapshot.Kind{snapshot.KindStats, snapshot.KindProjects}
			switch snapshot.Kind(kind) {
			case "":
			case snapshot.KindStats, snapshot.KindProjects:
				kinds = []snapshot.Kind{snapshot.Kind(kind)}
			default:
				return errs.New(errs.ErrCodeInvalidInput, "unknown snapshot kind %q (want stats or projects)", kind)
			}

			store, err := c.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			var list []*snapshot.Snapshot
			for _, k := range kinds {
				found, err := store.List(ctx, k, user, limit)
				if err != nil {
					return err
				}
				list = append(list, found...)
			}

			if len(list) == 0 {
				printInfo("No snapshots for %s", user)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSnapshots(list, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list stats or projects snapshots")
	cmd.Flags().IntVarP(&limit, "limit", "n", snapshot.DefaultKeep, "snapshots listed per kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(snapshot.KindStats), string(snapshot.KindProjects)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func renderSnapshots(list []*snapshot.Snapshot, now time.Time) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{
			string(s.Kind),
			s.CreatedAt.Local().Format(time.DateTime),
			formatRelativeTime(s.CreatedAt, now),
			formatBytes(int64(len(s.Payload))),
			s.ID,
		}
	}
	return renderTable([]string{"Kind", "Taken", "Age", "Size", "ID"}, rows, false)
}
