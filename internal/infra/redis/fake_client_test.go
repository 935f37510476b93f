//go:build !integration

package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// fakeClient is an in-memory RedisClient. Expirations are tracked but only
// checked lazily on Get, which is enough for cache and limiter tests.
type fakeClient struct {
	mu      sync.Mutex
	data    map[string]string
	expiry  map[string]time.Time
	counter map[string]int64
	failing bool
}

var _ RedisClient = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		data:    make(map[string]string),
		expiry:  make(map[string]time.Time),
		counter: make(map[string]int64),
	}
}

func (f *fakeClient) Ping(ctx context.Context) error {
	if f.failing {
		return fmt.Errorf("fake redis down")
	}
	return nil
}

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if f.failing {
		return fmt.Errorf("fake redis down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		f.data[key] = fmt.Sprint(v)
	}
	if expiration > 0 {
		f.expiry[key] = time.Now().Add(expiration)
	}
	return nil
}

func (f *fakeClient) Get(ctx context.Context, key string) (string, error) {
	if f.failing {
		return "", fmt.Errorf("fake redis down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if exp, ok := f.expiry[key]; ok && time.Now().After(exp) {
		delete(f.data, key)
		delete(f.expiry, key)
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	if f.failing {
		return 0, fmt.Errorf("fake redis down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter[key]++
	return f.counter[key], nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiry[key] = time.Now().Add(expiration)
	return nil
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
		delete(f.expiry, k)
		delete(f.counter, k)
	}
	return nil
}

func (f *fakeClient) Close() error { return nil }
