package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vrp-route-env/internal/ports"
)

// SQLImpactCache is a SQL-backed cache of impact factors keyed by edge or
// location. The statements run unchanged on Postgres (pgx) and SQLite.
type SQLImpactCache struct {
	DB  *sql.DB
	TTL time.Duration
	// Now is the clock used for expiry; nil means time.Now.
	Now func() time.Time
}

func NewSQLImpactCache(db *sql.DB, ttl time.Duration) *SQLImpactCache {
	return &SQLImpactCache{DB: db, TTL: ttl}
}

func (s *SQLImpactCache) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Get returns ports.ErrCacheMiss for absent or expired entries.
func (s *SQLImpactCache) Get(ctx context.Context, key string) (_ float64, err error) {
	defer timeGet(ctx, "impact.cache.sql.Get")(&err)

	if s.DB == nil {
		return 0, errors.New("impact cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return 0, errors.New("get impact cache: key must not be empty")
	}

	q := `
	SELECT factor, expires_at
	FROM impact_cache
	WHERE cache_key = $1;
	`

	var factor float64
	var expiresAt int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&factor, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ports.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get impact cache: query impact_cache table: %w", err)
	}

	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		return 0, ports.ErrCacheMiss
	}

	return factor, nil
}

// Put stores or replaces one factor. A zero TTL keeps entries forever.
func (s *SQLImpactCache) Put(ctx context.Context, key string, factor float64) error {
	if s.DB == nil {
		return errors.New("impact cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert impact cache: key must not be empty")
	}

	var expiresAt int64
	if s.TTL > 0 {
		expiresAt = s.now().Add(s.TTL).Unix()
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO impact_cache (cache_key, factor, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET factor = EXCLUDED.factor,
		expires_at = EXCLUDED.expires_at;
	`, key, factor, expiresAt)
	if err != nil {
		return fmt.Errorf("insert impact cache key=%q: %w", key, err)
	}

	return nil
}

// Purge deletes expired rows and reports how many were removed.
func (s *SQLImpactCache) Purge(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("impact cache: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `
	DELETE FROM impact_cache
	WHERE expires_at > 0 AND expires_at <= $1;
	`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge impact cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge impact cache: rows affected: %w", err)
	}
	return n, nil
}
