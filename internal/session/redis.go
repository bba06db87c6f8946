package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPersister keeps the record under Key with a TTL that bounds the
// browsing session.  Every save restarts the TTL.
type RedisPersister struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

func (r RedisPersister) Load(ctx context.Context) ([]byte, error) {
	bs, err := r.Client.Get(ctx, r.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return bs, err
}

func (r RedisPersister) Save(ctx context.Context, data []byte) error {
	return r.Client.Set(ctx, r.Key, data, r.TTL).Err()
}

func (r RedisPersister) Delete(ctx context.Context) error {
	return r.Client.Del(ctx, r.Key).Err()
}
