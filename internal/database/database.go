// Package database opens the configured store backend and owns its
// lifecycle for the process.
package database

import (
	"context"
	"time"

	"chatapp/server/internal/config"
	"chatapp/server/internal/store"
	"chatapp/server/internal/store/memory"
	"chatapp/server/internal/store/mongo"
	"chatapp/server/internal/store/postgres"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// connectTimeout bounds connecting, migrating and seeding at startup.
const connectTimeout = 15 * time.Second

// Open connects to the backend selected by cfg.StoreDriver and, when
// cfg.Seed is set, writes the demo data into an empty store.
func Open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var (
		s   store.Store
		err error
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		s = memory.New()
	case config.DriverPostgres:
		s, err = postgres.Connect(ctx, cfg.DatabaseURL)
	case config.DriverMongo:
		s, err = mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		err = errors.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to open %s store", cfg.StoreDriver)
	}

	if cfg.Seed {
		if _, err := store.Seed(ctx, s, time.Now()); err != nil {
			_ = s.Close(context.Background())
			return nil, errors.WithMessage(err, "failed to seed store")
		}
	}

	jww.INFO.Printf("Using %s store", cfg.StoreDriver)
	return s, nil
}

// Close releases the store, logging instead of failing.
func Close(s store.Store) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		jww.ERROR.Printf("Failed to close store: %v", err)
	}
}
