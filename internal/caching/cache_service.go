package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"subtrack/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService caches per-owner subscription lists and carries the
// change feed that backs live watch delivery. Every successful mutation
// invalidates the owner's cached list and publishes a change event;
// watchers re-query on each event.
type CacheService interface {
	GetOwnerSubscriptions(ctx context.Context, ownerID uuid.UUID) ([]*models.Subscription, error)
	SetOwnerSubscriptions(ctx context.Context, ownerID uuid.UUID, subscriptions []*models.Subscription, ttl time.Duration) error
	InvalidateOwner(ctx context.Context, ownerID uuid.UUID) error

	// Change feed. PublishChange is best-effort; SubscribeChanges delivers
	// an empty struct per logical change until the cancel func is called.
	PublishChange(ctx context.Context, ownerID uuid.UUID) error
	SubscribeChanges(ctx context.Context, ownerID uuid.UUID) (<-chan struct{}, func())

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func ownerSubsKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("subtrack:subs:%s", ownerID.String())
}

func ownerChangeChannel(ownerID uuid.UUID) string {
	return fmt.Sprintf("subtrack:subchange:%s", ownerID.String())
}

func (r *redisCacheService) GetOwnerSubscriptions(ctx context.Context, ownerID uuid.UUID) ([]*models.Subscription, error) {
	data, err := r.client.Get(ctx, ownerSubsKey(ownerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var subscriptions []*models.Subscription
	if err := json.Unmarshal(data, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *redisCacheService) SetOwnerSubscriptions(ctx context.Context, ownerID uuid.UUID, subscriptions []*models.Subscription, ttl time.Duration) error {
	data, err := json.Marshal(subscriptions)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, ownerSubsKey(ownerID), data, ttl).Err()
}

func (r *redisCacheService) InvalidateOwner(ctx context.Context, ownerID uuid.UUID) error {
	return r.client.Del(ctx, ownerSubsKey(ownerID)).Err()
}

func (r *redisCacheService) PublishChange(ctx context.Context, ownerID uuid.UUID) error {
	return r.client.Publish(ctx, ownerChangeChannel(ownerID), ownerID.String()).Err()
}

func (r *redisCacheService) SubscribeChanges(ctx context.Context, ownerID uuid.UUID) (<-chan struct{}, func()) {
	pubsub := r.client.Subscribe(ctx, ownerChangeChannel(ownerID))
	events := make(chan struct{}, 1)

	go func() {
		defer close(events)
		for range pubsub.Channel() {
			select {
			case events <- struct{}{}:
			default:
				// A change is already pending; the watcher re-queries the
				// current set anyway, so coalescing is safe.
			}
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("Failed to close change subscription for owner %s: %v", ownerID.String(), err)
		}
	}
	return events, cancel
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
