package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pendingCountKeyPrefix = "service_requests:pending:professional:"

// RedisKV is the part of the Redis client the cache needs. *redis.Client satisfies it.
type RedisKV interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// PendingCountCache caches CountPendingByProfessional in Redis and forwards every
// other call to the wrapped repository. Redis failures degrade to the wrapped
// repository and are only logged.
//
// Each professional has a generation counter that writes bump. A cached count is
// stored as "<generation>:<count>" and only served while its generation is still
// current, so a count read from storage before a concurrent write can never
// outlive that write.
type PendingCountCache struct {
	interfaces.IServiceRequestRepository
	kv     RedisKV
	ttl    time.Duration
	logger *logger.Logger
}

var _ interfaces.IServiceRequestRepository = (*PendingCountCache)(nil)

func NewPendingCountCache(inner interfaces.IServiceRequestRepository, kv RedisKV, ttl time.Duration, log *logger.Logger) *PendingCountCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &PendingCountCache{
		IServiceRequestRepository: inner,
		kv:                        kv,
		ttl:                       ttl,
		logger:                    log.Named("PendingCountCache"),
	}
}

func pendingCountKey(professionalID int64) string {
	return pendingCountKeyPrefix + strconv.FormatInt(professionalID, 10)
}

func pendingGenerationKey(professionalID int64) string {
	return pendingCountKey(professionalID) + ":gen"
}

// cachedCount returns the cached count when it was written under generation gen.
func cachedCount(raw interface{}, gen string) (int, bool) {
	s, ok := raw.(string)
	if !ok {
		return 0, false
	}
	tag, count, found := strings.Cut(s, ":")
	if !found || tag != gen {
		return 0, false
	}
	n, err := strconv.Atoi(count)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *PendingCountCache) CountPendingByProfessional(ctx context.Context, professionalID int64) (int, error) {
	key := pendingCountKey(professionalID)
	genKey := pendingGenerationKey(professionalID)

	gen, cacheable := "0", true
	vals, err := c.kv.MGet(ctx, genKey, key).Result()
	switch {
	case err != nil:
		cacheable = false
		c.logger.Warn("Redis read failed, using storage", zap.String("key", key), zap.Error(err))
	case len(vals) == 2:
		if g, ok := vals[0].(string); ok {
			gen = g
		}
		if n, ok := cachedCount(vals[1], gen); ok {
			return n, nil
		}
	}

	n, err := c.IServiceRequestRepository.CountPendingByProfessional(ctx, professionalID)
	if err != nil {
		return 0, err
	}
	if !cacheable {
		return n, nil
	}
	if err := c.kv.Set(ctx, key, gen+":"+strconv.Itoa(n), c.ttl).Err(); err != nil {
		c.logger.Warn("Redis write failed", zap.String("key", key), zap.Error(err))
	}
	return n, nil
}

func (c *PendingCountCache) Create(ctx context.Context, sr entities.ServiceRequest) (entities.ServiceRequest, error) {
	created, err := c.IServiceRequestRepository.Create(ctx, sr)
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	c.invalidate(ctx, created.ProfessionalID)
	return created, nil
}

func (c *PendingCountCache) UpdateState(ctx context.Context, u interfaces.StateUpdate) (bool, error) {
	applied, err := c.IServiceRequestRepository.UpdateState(ctx, u)
	if err != nil || !applied {
		return applied, err
	}

	professionalID := u.ExpectedProfessionalID
	if professionalID == 0 {
		sr, err := c.IServiceRequestRepository.GetByID(ctx, u.ID)
		if err != nil || sr.ID == "" {
			c.logger.Warn("Cannot resolve professional for cache invalidation", zap.String("request_id", u.ID), zap.Error(err))
			return applied, nil
		}
		professionalID = sr.ProfessionalID
	}
	c.invalidate(ctx, professionalID)
	return applied, nil
}

func (c *PendingCountCache) invalidate(ctx context.Context, professionalID int64) {
	key := pendingGenerationKey(professionalID)
	if err := c.kv.Incr(ctx, key).Err(); err != nil {
		c.logger.Warn("Redis generation bump failed", zap.String("key", key), zap.Error(err))
	}
}
