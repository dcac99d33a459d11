package main

import (
	"io/fs"
	"testing"

	"github.com/portwatch/reconciler/internal/database"
)

func TestEmbeddedMigrationsAreApplicable(t *testing.T) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("creating migrations sub-fs: %v", err)
	}

	files, err := database.MigrationFiles(sub)
	if err != nil {
		t.Fatalf("MigrationFiles() error: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migration passes the migrator's filter")
	}
	if files[0] != "001_init.up.sql" {
		t.Errorf("first migration = %q, want 001_init.up.sql", files[0])
	}
}
