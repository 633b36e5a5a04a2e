// Package commands implements the rentclient command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/rentchain/rentclient/internal/pkg/config"
	"github.com/rentchain/rentclient/pkg/logger"
)

var cfg *config.Config

func Execute() error {
	root := &cobra.Command{
		Use:           "rentclient",
		Short:         "Session, wallet and route guard host of the rental marketplace client",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})
			return nil
		},
	}

	root.AddCommand(serveCmd(), sessionCmd(), auditCmd())
	return root.Execute()
}
