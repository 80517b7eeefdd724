package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("key not found")

const (
	breakerTripFailures = 5
	breakerOpenTimeout  = 30 * time.Second
)

// CacheService stores JSON values in redis. Calls go through a circuit
// breaker so an unreachable redis fails fast instead of stalling requests.
type CacheService struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
}

func NewCacheService(client *redis.Client) *CacheService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "redis-cache",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Cache circuit breaker state changed")
		},
	})

	return &CacheService{
		client:  client,
		breaker: breaker,
	}
}

// do runs fn through the circuit breaker
func (s *CacheService) do(fn func() error) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.do(func() error {
		if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
			return fmt.Errorf("failed to set cache: %w", err)
		}
		return nil
	})
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	err := s.do(func() error {
		var err error
		data, err = s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("failed to get cache: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.do(func() error {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache: %w", err)
		}
		return nil
	})
}

func (s *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	var val int64
	err := s.do(func() error {
		var err error
		if val, err = s.client.Exists(ctx, key).Result(); err != nil {
			return fmt.Errorf("failed to check cache existence: %w", err)
		}
		return nil
	})
	return val > 0, err
}

// BreakerState reports the circuit breaker state, e.g. "closed" or "open"
func (s *CacheService) BreakerState() string {
	return s.breaker.State().String()
}

// Ping reports whether redis is reachable. It bypasses the breaker so
// readiness reflects the live connection.
func (s *CacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Cache key generators
func RunCacheKey(runID string) string {
	return fmt.Sprintf("simulation_run:%s", runID)
}

// SetWithRetry retries Set with a linear backoff
func (s *CacheService) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = s.Set(ctx, key, value, expiration); err == nil {
			return nil
		}
		logrus.Warnf("Cache set failed (attempt %d/%d): %v", i+1, maxRetries, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond * 100 * time.Duration(i+1)):
		}
	}
	return err
}
