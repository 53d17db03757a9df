package cache

import (
	"fmt"
	"io"
)

// New builds the backend named by cfg.Backend. The returned closer releases
// every layer that was opened.
func New(cfg Config) (Service, io.Closer, error) {
	switch cfg.Backend {
	case "", "memory":
		mc := NewMemoryCache(WithMemoryMaxSize(cfg.MaxEntries))
		return mc, mc, nil
	case "redis", "layered":
		rc, err := NewRedisCache(
			WithRedisAddr(cfg.Addr),
			WithRedisPassword(cfg.Password),
			WithRedisDB(cfg.DB),
			WithRedisPrefix(cfg.Prefix),
		)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Backend == "redis" {
			return rc, rc, nil
		}
		lc := NewLayeredCache(rc, cfg.MaxEntries, cfg.TTL)
		return lc, closers{lc, rc}, nil
	default:
		return nil, nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}

type closers []io.Closer

func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
