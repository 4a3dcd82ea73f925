package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xCarter93/lineupiq/adapters/localfs"
	"github.com/xCarter93/lineupiq/adapters/postgres"
	"github.com/xCarter93/lineupiq/internal/config"
	"github.com/xCarter93/lineupiq/internal/errors"
	"github.com/xCarter93/lineupiq/ports"
)

// BuildArtifactStore constructs the configured artifact store backend.
// The returned cleanup closes any underlying connection and is safe to
// call on every path.
func BuildArtifactStore(ctx context.Context, cfg *config.Config) (ports.ArtifactStore, func(), error) {
	switch cfg.Store.Backend {
	case "localfs":
		store, err := localfs.NewArtifactStore(cfg.Store.Dir)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to open localfs artifact store")
		}
		return store, func() {}, nil

	case "postgres":
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to database")
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, errors.Wrap(err, "failed to prepare artifact schema")
		}
		return postgres.NewArtifactStore(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown artifact store backend %q", cfg.Store.Backend)
	}
}
