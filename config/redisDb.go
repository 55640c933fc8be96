package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)
var ctx = context.Background()

func GetRedisDB() *redis.Client {
	return rdb
}

func GetRedisLock() *redislock.Client {
	return locker
}

// GetRedisValue reads a key. The second result reports whether the key
// exists; a nil Redis client reads as absent.
func GetRedisValue(key string) (string, bool, error) {
	if rdb == nil {
		return "", false, nil
	}
	value, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func SetRedisValue(key string, value string, expiration time.Duration) error {
	if rdb == nil {
		return nil
	}
	return rdb.Set(ctx, key, value, expiration).Err()
}

// ConnectRedisWithRetry connects to Redis and sets up the distributed lock
// client. Redis is optional: when REDIS_ADDRESS is unset the recompute sweep
// falls back to single-instance operation.
func ConnectRedisWithRetry() {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		log.Printf("REDIS_ADDRESS not set; cross-instance locks disabled")
		return
	}
	password := os.Getenv("REDIS_PASSWORD")

	var attempt int
	for {
		attempt++
		client := redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err == nil {
			rdb = client
			locker = redislock.New(client)
			log.Printf("connected to redis (attempt=%d)", attempt)
			return
		} else {
			log.Printf("failed to connect redis (attempt=%d): %v", attempt, err)
		}
		if attempt >= 5 {
			log.Printf("giving up on redis after %d attempts; cross-instance locks disabled", attempt)
			return
		}
		time.Sleep(time.Second * time.Duration(attempt))
	}
}
