// Package targetcache memoises hover target solutions in a key-value store.
package targetcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/db"
	"github.com/kailas-cloud/hoverpoint/internal/metrics"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// KeyPrefix namespaces every cached solution.
const KeyPrefix = "hoverpoint:target:"

// Compile-time check: CachedSolver implements target.Solver.
var _ target.Solver = (*CachedSolver)(nil)

// store is the consumer interface for the solution cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedSolver caches solutions keyed by corners, resolved offsets and ellipsoid.
type CachedSolver struct {
	inner     target.Solver
	store     store
	defaults  target.Config
	ellipsoid string
	ttl       time.Duration
	logger    *zap.Logger
}

// New creates a caching decorator. defaults must match the inner solver's config,
// otherwise calls without options would share keys with different offsets.
func New(
	inner target.Solver,
	s store,
	defaults target.Config,
	ellipsoid string,
	ttl time.Duration,
	logger *zap.Logger,
) *CachedSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSolver{
		inner:     inner,
		store:     s,
		defaults:  defaults,
		ellipsoid: ellipsoid,
		ttl:       ttl,
		logger:    logger,
	}
}

// Solve returns a cached solution or calls the inner solver.
// Failed computations are never cached. A done context fails before the
// cache is consulted, as it does for the inner solver.
func (c *CachedSolver) Solve(ctx context.Context, corners target.Corners, opts ...target.Option) (target.Solution, error) {
	if err := ctx.Err(); err != nil {
		return target.Solution{}, fmt.Errorf("solve: %w", err)
	}

	params := c.defaults.Resolve(opts...)
	key := c.cacheKey(corners, params)

	if sol, ok := c.getFromCache(ctx, key); ok {
		incCache("hit")
		return sol, nil
	}

	incCache("miss")

	sol, err := c.inner.Solve(ctx, corners, opts...)
	if err != nil {
		return target.Solution{}, err
	}

	c.putToCache(ctx, key, sol)
	return sol, nil
}

func incCache(result string) {
	metrics.TargetCacheTotal.WithLabelValues(result).Inc()
}

// cacheKey hashes the exact float bits, so -0 and 0 produce different keys.
func (c *CachedSolver) cacheKey(corners target.Corners, p target.Params) string {
	h := sha256.New()
	h.Write([]byte(c.ellipsoid))
	buf := make([]byte, 8)
	write := func(v float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	binary.LittleEndian.PutUint64(buf, uint64(len(corners)))
	h.Write(buf)
	for _, pt := range corners {
		write(pt.Lat)
		write(pt.Lon)
		write(pt.Alt)
	}
	write(p.BackDistance)
	write(p.UpDistance)
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedSolver) getFromCache(ctx context.Context, key string) (target.Solution, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			incCache("error")
			c.logger.Warn("Failed to get cached solution", zap.String("key", key), zap.Error(err))
		}
		return target.Solution{}, false
	}
	if len(data) == 0 {
		return target.Solution{}, false
	}

	sol, err := decodeSolution(data)
	if err != nil {
		incCache("error")
		c.logger.Warn("Failed to parse cached solution, evicting", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to evict cached solution", zap.String("key", key), zap.Error(err))
		}
		return target.Solution{}, false
	}
	return sol, true
}

func (c *CachedSolver) putToCache(ctx context.Context, key string, sol target.Solution) {
	data, err := encodeSolution(sol)
	if err != nil {
		c.logger.Warn("Failed to encode solution", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		incCache("error")
		c.logger.Warn("Failed to cache solution", zap.String("key", key), zap.Error(err))
	}
}

func encodeSolution(sol target.Solution) ([]byte, error) {
	data, err := json.Marshal(toDTO(sol))
	if err != nil {
		return nil, fmt.Errorf("marshal solution: %w", err)
	}
	return data, nil
}

func decodeSolution(data []byte) (target.Solution, error) {
	var d solutionDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return target.Solution{}, fmt.Errorf("unmarshal solution: %w", err)
	}
	if d.Version != dtoVersion {
		return target.Solution{}, fmt.Errorf("unsupported cache version %d", d.Version)
	}
	return d.toSolution(), nil
}
