package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/factotum/pkg/persistence"
	"github.com/dukex/factotum/pkg/persistence/file"
	"github.com/dukex/factotum/pkg/persistence/postgresql"
	"github.com/dukex/factotum/pkg/persistence/redis"
)

// NewPersistence builds the persistence backend from the database URL
// scheme. Anything without a recognized scheme is a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		scheme = "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis", "rediss":
		return redis.NewPersistence(ctx, databaseURL)
	case "file":
		return file.NewPersistence(databaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported persistence provider: %s", scheme)
	}
}
