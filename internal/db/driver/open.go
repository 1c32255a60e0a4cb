// Package driver opens the db.Store selected by configuration.
package driver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/config"
	"github.com/kailas-cloud/alumdex/internal/db"
	dbBadger "github.com/kailas-cloud/alumdex/internal/db/badger"
	dbRedis "github.com/kailas-cloud/alumdex/internal/db/redis"
)

// Open creates the store for cfg.Driver. Valkey and Redis share the rueidis
// client; badger opens an embedded database.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
		}
		return s, nil
	case config.DriverBadger:
		s, err := dbBadger.Open(dbBadger.Config{Path: cfg.Path, InMemory: cfg.InMemory}, logger)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
