package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"fitlab/internal/modules/results/domain"
	apperrors "fitlab/internal/platform/errors"
)

// RedisRepository keeps result ids newest-first in a list under key and
// the encoded results in a hash under key+":byid". Every change is
// published on key+":changed" so observers in other processes refresh.
type RedisRepository struct {
	client  *redis.Client
	listKey string
	hashKey string
	channel string
}

func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	return &RedisRepository{
		client:  client,
		listKey: key,
		hashKey: key + ":byid",
		channel: key + ":changed",
	}
}

func DialRedis(addr, key string) *RedisRepository {
	return NewRedisRepository(redis.NewClient(&redis.Options{Addr: addr}), key)
}

func (r *RedisRepository) ObserveAll(ctx context.Context) (<-chan []domain.TestResult, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	first, err := r.snapshot(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	out := make(chan []domain.TestResult, 1)
	out <- first
	go func() {
		defer close(out)
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, open := <-messages:
				if !open {
					return
				}
			}
			snapshot, err := r.snapshot(ctx)
			if err != nil {
				return
			}
			select {
			case <-out:
			default:
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (r *RedisRepository) Save(ctx context.Context, result domain.TestResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", result.ID, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, r.listKey, 0, result.ID)
		pipe.LPush(ctx, r.listKey, result.ID)
		pipe.HSet(ctx, r.hashKey, result.ID, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save result %s: %w", result.ID, err)
	}
	if err := r.client.Publish(ctx, r.channel, result.ID).Err(); err != nil {
		return fmt.Errorf("publish result %s: %w", result.ID, err)
	}
	return nil
}

func (r *RedisRepository) FindByID(ctx context.Context, id string) (domain.TestResult, error) {
	raw, err := r.client.HGet(ctx, r.hashKey, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TestResult{}, fmt.Errorf("result %s: %w", id, apperrors.ErrNotFound)
		}
		return domain.TestResult{}, fmt.Errorf("get result %s: %w", id, err)
	}
	var result domain.TestResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.TestResult{}, fmt.Errorf("decode result %s: %w", id, err)
	}
	return result, nil
}

func (r *RedisRepository) Find(ctx context.Context, filter domain.Filter) ([]domain.TestResult, error) {
	all, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilter(all, filter), nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, r.listKey, 0, id)
		removed = pipe.HDel(ctx, r.hashKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete result %s: %w", id, err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("result %s: %w", id, apperrors.ErrNotFound)
	}
	if err := r.client.Publish(ctx, r.channel, id).Err(); err != nil {
		return fmt.Errorf("publish delete %s: %w", id, err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) snapshot(ctx context.Context) ([]domain.TestResult, error) {
	ids, err := r.client.LRange(ctx, r.listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if len(ids) == 0 {
		return []domain.TestResult{}, nil
	}
	values, err := r.client.HMGet(ctx, r.hashKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	out := make([]domain.TestResult, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var result domain.TestResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", ids[i], err)
		}
		out = append(out, result)
	}
	return out, nil
}
