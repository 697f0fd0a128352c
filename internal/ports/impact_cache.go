package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by ImpactCache.Get when no value is stored.
var ErrCacheMiss = errors.New("impact cache: miss")

// Key/value store for previously resolved impact factors.
type ImpactCache interface {
	Get(ctx context.Context, key string) (float64, error)
	Put(ctx context.Context, key string, factor float64) error
}
