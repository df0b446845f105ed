package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"clubauth/internal/models"
)

const (
	tokenKeyPrefix = "token:"
	userHashKey    = "user"
)

// tokenKey namespaces session tokens in the shared keyspace. Distinct
// tokens always map to distinct keys.
func tokenKey(token string) string {
	return tokenKeyPrefix + token
}

// RedisCache backs TokenStore and UserMirror with one redis database.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Ensure both contracts at compile time.
var (
	_ TokenStore = (*RedisCache)(nil)
	_ UserMirror = (*RedisCache)(nil)
)

// NewCache bundles a RedisCache behind the two store interfaces.
func NewCache(rdb *redis.Client) *Cache {
	c := NewRedisCache(rdb)
	return &Cache{Tokens: c, Users: c}
}

// Save stores token -> userID with the given ttl.
func (c *RedisCache) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	key := tokenKey(token)
	if err := c.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Resolve returns the user id behind a live token.
func (c *RedisCache) Resolve(ctx context.Context, token string) (int64, error) {
	val, err := c.rdb.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, fmt.Errorf("resolve token: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse user id %q behind token: %w", val, err)
	}
	return id, nil
}

// Delete removes a token entry. Absent keys are a no-op.
func (c *RedisCache) Delete(ctx context.Context, token string) error {
	if err := c.rdb.Del(ctx, tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// SaveUser mirrors a user record as JSON into the user hash, keyed by id.
func (c *RedisCache) SaveUser(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user %d: %w", u.ID, err)
	}
	if err := c.rdb.HSet(ctx, userHashKey, strconv.FormatInt(u.ID, 10), data).Err(); err != nil {
		return fmt.Errorf("mirror user %d: %w", u.ID, err)
	}
	return nil
}

// GetUser reads a mirrored user record. Returns (nil, nil) on a miss.
func (c *RedisCache) GetUser(ctx context.Context, id int64) (*models.User, error) {
	data, err := c.rdb.HGet(ctx, userHashKey, strconv.FormatInt(id, 10)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read mirrored user %d: %w", id, err)
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("unmarshal mirrored user %d: %w", id, err)
	}
	return &u, nil
}
