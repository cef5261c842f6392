package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still belongs to the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), flightsTTL)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	ok, err := c.getJSON(ctx, flightsKey(), &flights)
	if err != nil || !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return c.setJSON(ctx, flightsKey(), flights)
}

func (c *RedisCache) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	var flight domain.Flight
	ok, err := c.getJSON(ctx, flightKey(id), &flight)
	if err != nil || !ok {
		return nil, err
	}
	return &flight, nil
}

func (c *RedisCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	return c.setJSON(ctx, flightKey(flight.ID), flight)
}

// InvalidateFlight drops the flight and the flight list after its seat count changed.
func (c *RedisCache) InvalidateFlight(ctx context.Context, id int64) error {
	return c.client.Del(ctx, flightKey(id), flightsKey()).Err()
}

func (c *RedisCache) AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, lockKey(name), owner, ttl).Result()
}

func (c *RedisCache) ReleaseLock(ctx context.Context, name, owner string) error {
	return releaseScript.Run(ctx, c.client, []string{lockKey(name)}, owner).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.flightsTTL).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func flightKey(id int64) string {
	return fmt.Sprintf("cache:flight:%d", id)
}

func lockKey(name string) string {
	return "lock:" + name
}
