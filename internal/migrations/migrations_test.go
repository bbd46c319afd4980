package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"github.com/garrettladley/whoopsync/internal/migrations"
)

func TestStatements(t *testing.T) {
	t.Parallel()

	got := migrations.Statements("CREATE TABLE a (id INT);\n\n  ;CREATE TABLE b (id INT);\n")
	want := []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Statements() mismatch (-want +got):\n%s", diff)
	}
}

func TestFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/000002_b.sql": {Data: []byte("SELECT 1;")},
		"sql/000001_a.sql": {Data: []byte("SELECT 1;")},
		"sql/README.md":    {Data: []byte("notes")},
	}

	got, err := migrations.Files(fsys, "sql")
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	want := []string{"000001_a.sql", "000002_b.sql"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()

	first, err := migrations.Apply(ctx, db)
	if err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	if len(first) == 0 {
		t.Fatal("first Apply() applied nothing")
	}

	second, err := migrations.Apply(ctx, db)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second Apply() = %v, want none", second)
	}

	for _, table := range []string{"whoop_tokens", "whoop_data"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
