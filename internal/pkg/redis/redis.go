package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
}

const Nil = redis.Nil

// chunkSize bounds the arguments of a single RPUSH/ZADD.
const chunkSize = 1000

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *Redis) ReplaceAll(ctx context.Context, batch Batch) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if keys := batch.Keys(); len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		for key, value := range batch.Strings {
			pipe.Set(ctx, key, value, 0)
		}
		for key, values := range batch.Lists {
			for _, chunk := range Chunk(values, chunkSize) {
				args := make([]any, len(chunk))
				for i, v := range chunk {
					args[i] = v
				}
				pipe.RPush(ctx, key, args...)
			}
		}
		for key, members := range batch.SortedSets {
			for _, chunk := range Chunk(members, chunkSize) {
				zs := make([]redis.Z, len(chunk))
				for i, m := range chunk {
					zs[i] = redis.Z{Score: m.Score, Member: m.Member}
				}
				pipe.ZAdd(ctx, key, zs...)
			}
		}
		return nil
	})
	return err
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = chunkSize
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
