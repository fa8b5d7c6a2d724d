package checkpoint

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"
)

const (
	defaultNetworkTimeout = 5 * time.Second
	keyPrefix             = "szaudit:checkpoint:"
)

// RedisStore keeps checkpoints as JSON strings in Redis, one key per
// (input, account) pair. No TTL: checkpoints live until overwritten.
type RedisStore struct {
	client *redis.Client
}

// RedisOpts configures NewRedisStore.
type RedisOpts struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(opts RedisOpts) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  defaultNetworkTimeout,
		ReadTimeout:  defaultNetworkTimeout,
		WriteTimeout: defaultNetworkTimeout,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("checkpoint: connect redis at %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get reads the checkpoint for key. redis.Nil means no checkpoint.
func (s *RedisStore) Get(key string) (Checkpoint, bool, error) {
	value, err := s.client.Get(keyPrefix + key).Result()
	if err == redis.Nil {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("checkpoint: get key[%s]: %w", key, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal([]byte(value), &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("checkpoint: decode key[%s]: %w", key, err)
	}
	return cp, true, nil
}

// Set overwrites the checkpoint for key.
func (s *RedisStore) Set(key string, cp Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: encode key[%s]: %w", key, err)
	}
	if err := s.client.Set(keyPrefix+key, string(data), 0).Err(); err != nil {
		return fmt.Errorf("checkpoint: set key[%s]: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
