package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "auth:sessions"

// Sessions tracks which issued tokens are still live, so logout and
// moderation actions can revoke them before they expire.
type Sessions interface {
	Add(ctx context.Context, userID int, tokenID string, ttl time.Duration) error
	Active(ctx context.Context, userID int, tokenID string) (bool, error)
	Remove(ctx context.Context, userID int, tokenID string) error
	RevokeAll(ctx context.Context, userID int) error
}

// NopSessions accepts every token until it expires. Used when no redis is
// configured.
type NopSessions struct{}

func (NopSessions) Add(context.Context, int, string, time.Duration) error { return nil }
func (NopSessions) Active(context.Context, int, string) (bool, error)    { return true, nil }
func (NopSessions) Remove(context.Context, int, string) error            { return nil }
func (NopSessions) RevokeAll(context.Context, int) error                 { return nil }

// RedisSessions keeps one set of live token ids per user.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// OpenRedis connects and pings once.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func sessionKey(userID int) string {
	return sessionKeyPrefix + ":" + strconv.Itoa(userID)
}

func (s *RedisSessions) Add(ctx context.Context, userID int, tokenID string, ttl time.Duration) error {
	key := sessionKey(userID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, key, tokenID)
		// The set lives as long as the newest token.
		p.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (s *RedisSessions) Active(ctx context.Context, userID int, tokenID string) (bool, error) {
	return s.client.SIsMember(ctx, sessionKey(userID), tokenID).Result()
}

func (s *RedisSessions) Remove(ctx context.Context, userID int, tokenID string) error {
	return s.client.SRem(ctx, sessionKey(userID), tokenID).Err()
}

func (s *RedisSessions) RevokeAll(ctx context.Context, userID int) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}
