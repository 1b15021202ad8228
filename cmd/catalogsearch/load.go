package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	dbRedis "github.com/kailas-cloud/catalogsearch/internal/db/redis"
	catalogrepo "github.com/kailas-cloud/catalogsearch/internal/repository/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/source/file"
)

func newLoadCmd(o *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Push a snapshot file into the shared store",
		Long: `Validates a snapshot file and writes it to Redis/Valkey under the
configured key prefix, where instances with catalog.source=redis pick it up
on their next refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := o.loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Database.Addrs) == 0 {
				return fmt.Errorf("database.addrs is required for load")
			}

			src, err := file.New(path, nil)
			if err != nil {
				return err
			}
			snap, err := src.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			store, err := dbRedis.NewStore(dbRedis.Config{
				Addrs:    cfg.Database.Addrs,
				Username: cfg.Database.Username,
				Password: cfg.Database.Password,
				DB:       cfg.Database.DB,
			})
			if err != nil {
				return fmt.Errorf("failed to create database store: %w", err)
			}
			defer store.Close()

			timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
			if err := store.WaitForReady(cmd.Context(), timeout); err != nil {
				return err
			}
			if err := catalogrepo.New(store, cfg.Storage.KeyPrefix).Save(cmd.Context(), snap); err != nil {
				return err
			}

			if o.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"version": snap.Version(),
					"items":   snap.Len(),
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d items (version %s)\n", snap.Len(), snap.Version())
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "Snapshot file (.json, .yaml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
