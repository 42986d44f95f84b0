package postgres

import (
	"testing"
	"testing/fstest"
)

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["sql/migrations/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestLoadMigrationsFromFS(t *testing.T) {
	fsys := migrationFS(map[string]string{
		"0002_add_wishlists.up.sql":   "CREATE TABLE wishlists (id TEXT PRIMARY KEY);",
		"0002_add_wishlists.down.sql": "DROP TABLE wishlists;",
		"0001_init.up.sql":            "CREATE TABLE products (id TEXT PRIMARY KEY);",
		"0001_init.down.sql":          "DROP TABLE products;",
	})

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("migrations must be sorted by version, got %d then %d", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "init" {
		t.Fatalf("unexpected migration name: %s", migrations[0].Name)
	}
	if migrations[0].UpSQL == "" || migrations[0].DownSQL == "" {
		t.Fatal("both up and down bodies must be loaded")
	}
}

func TestLoadMigrationsFromFSMissingDown(t *testing.T) {
	fsys := migrationFS(map[string]string{
		"0001_init.up.sql": "CREATE TABLE products (id TEXT PRIMARY KEY);",
	})

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("expected error for missing down migration")
	}
}

func TestLoadMigrationsFromFSBadName(t *testing.T) {
	fsys := migrationFS(map[string]string{
		"init.sql": "CREATE TABLE products (id TEXT PRIMARY KEY);",
	})

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("expected error for invalid migration file name")
	}
}

func TestLoadMigrationsFromFSEmptyDir(t *testing.T) {
	if _, err := loadMigrationsFromFS(fstest.MapFS{}); err == nil {
		t.Fatal("expected error for empty migrations dir")
	}
}

func TestLoadMigrationsFromFSEmptyBody(t *testing.T) {
	fsys := migrationFS(map[string]string{
		"0001_init.up.sql":   "   \n",
		"0001_init.down.sql": "DROP TABLE products;",
	})

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("expected error for empty migration body")
	}
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations must parse: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
}
