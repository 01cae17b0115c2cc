package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rupamthxt/vectraproj/internal/store"
)

func newSyncCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Project a user's knowledge graph nodes and store their 3D positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", user, err)
			}
			if a.cfg.Database.URL == "" {
				return errors.New("database.url is not configured")
			}
			if err := checkEngine(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := store.Sync(ctx, store.NewNodeStore(pool), a.runner(3), userID, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d node positions\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "id of the user whose nodes are projected")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
