package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cta-backend/internal/infrastructure/db"
)

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Applies every schema migration not yet recorded in schema_migrations, in version order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, log, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if status {
				return printPending(cmd, gdb)
			}
			return migrate(cmd, gdb, log)
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list pending migrations without applying them")
	return cmd
}

func printPending(cmd *cobra.Command, gdb *gorm.DB) error {
	pending, err := db.Pending(cmd.Context(), gdb, db.Schema)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	writePending(cmd.OutOrStdout(), pending)
	return nil
}

func writePending(w io.Writer, pending []db.Migration) {
	if len(pending) == 0 {
		fmt.Fprintln(w, "schema is up to date")
		return
	}
	for _, m := range pending {
		fmt.Fprintf(w, "pending %3d  %s\n", m.Version, m.Name)
	}
}

func migrate(cmd *cobra.Command, gdb *gorm.DB, log *zap.Logger) error {
	applied, err := db.Migrate(cmd.Context(), gdb, db.Schema, log)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s): %v\n", len(applied), applied)
	return nil
}
