package sqlstore

import (
	"context"
	"embed"
	"io/fs"

	persistence "github.com/goliatone/go-persistence-bun"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the embedded client_state schema migrations.
func MigrationsFS() fs.FS {
	return migrationsFS
}

// Setup registers the embedded migrations with a go-persistence-bun client
// and applies them.
func Setup(ctx context.Context, client *persistence.Client) error {
	client.RegisterSQLMigrations(migrationsFS)
	return client.Migrate(ctx)
}
