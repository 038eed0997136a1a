package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/teamboard/repository"
)

type attemptRepository struct {
	client redislib.UniversalClient
	prefix string
}

// NewAttemptRepository counts failed logins with INCR keys that expire after the window.
func NewAttemptRepository(client redislib.UniversalClient) repository.AttemptRepository {
	return &attemptRepository{client: client, prefix: "teamboard:login_attempts:"}
}

func (r *attemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	k := r.key(key)
	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 && window > 0 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return int(count), err
		}
	}
	return int(count), nil
}

func (r *attemptRepository) Count(ctx context.Context, key string) (int, error) {
	count, err := r.client.Get(ctx, r.key(key)).Int()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (r *attemptRepository) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *attemptRepository) key(key string) string {
	return fmt.Sprintf("%s%s", r.prefix, key)
}
