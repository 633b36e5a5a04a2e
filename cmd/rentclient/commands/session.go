package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rentchain/rentclient/internal/infrastructure/backend"
	"github.com/rentchain/rentclient/internal/infrastructure/db/redis"
)

type persistedView struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	UserID          string `json:"userId,omitempty"`
	Email           string `json:"email,omitempty"`
	Role            string `json:"role,omitempty"`
	TokenValid      bool   `json:"tokenValid"`
	TokenError      string `json:"tokenError,omitempty"`
}

// sessionCmd inspects or clears the persisted session.
func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rdb, err := connectRedis(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rdb.Close()

			stored, err := redis.NewSessionRepository(rdb, cfg.Session.Key, cfg.Session.TTL).Load(cmd.Context())
			if err != nil {
				return err
			}
			if stored == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no persisted session")
				return nil
			}

			view := persistedView{IsAuthenticated: stored.IsAuthenticated, TokenValid: true}
			if stored.User != nil {
				view.UserID, view.Email, view.Role = stored.User.UserID, stored.User.Email, string(stored.User.Role)
			}
			if err := backend.NewClaimsDecoder(cfg.Backend.JWTSecret).Check(stored.Token); err != nil {
				view.TokenValid, view.TokenError = false, err.Error()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rdb, err := connectRedis(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rdb.Close()

			if err := redis.NewSessionRepository(rdb, cfg.Session.Key, cfg.Session.TTL).Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
			return nil
		},
	})
	return cmd
}
