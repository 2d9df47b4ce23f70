package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/perecibles-api/internal/application/ports"
	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/pkg/config"
)

var _ ports.Locker = (*RedisLocker)(nil)

// NewRedisClient abre el cliente de Redis y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: ping redis %s: %v", domain.ErrStorageUnavailable, cfg.Addr, err)
	}
	return rdb, nil
}

// RedisLocker locks distribuidos con redislock: sirve cuando corren varias réplicas del API
// o el binario stock_repair en paralelo.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker construye el locker sobre un cliente ya conectado.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Obtain intenta tomar el lock una sola vez, sin reintentos.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (ports.Lock, error) {
	lk, err := l.client.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: trabajo %s en curso", domain.ErrConflict, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis lock %s: %v", domain.ErrStorageUnavailable, key, err)
	}
	return lk, nil
}
