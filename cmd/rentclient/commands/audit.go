package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/infrastructure/db/mongo"
)

// auditCmd lists the most recent audit events.
func auditCmd() *cobra.Command {
	var (
		userID string
		limit  int64
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent session and wallet events",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeMongo, err := connectMongo(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeMongo(context.Background()) }()

			events, err := mongo.NewAuditRepository(db).RecentEvents(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tKIND\tUSER\tADDRESS")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.Kind, e.UserID, domain.ShortAddress(e.Address))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only events of this user id")
	cmd.Flags().Int64Var(&limit, "limit", 20, "maximum number of events")
	return cmd
}
