package store

import (
	"context"
	"fmt"

	"vmforge/internal/config"
)

// New opens the backend selected by cfg
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case config.StoreMemory, "":
		return NewMemoryStore(), nil
	case config.StoreEtcd:
		return NewEtcdStore(cfg.Etcd.Endpoints, cfg.Etcd.DialTimeoutDuration())
	case config.StoreSQLite:
		s, err := NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Init(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}
