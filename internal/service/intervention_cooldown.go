package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// InterventionCooldownStore marca cuando se emitio la ultima intervencion
// por usuario y responde si la ventana de enfriamiento sigue activa.
type InterventionCooldownStore interface {
	MarkIntervened(userID string, ttl time.Duration) error
	InCooldown(userID string) (bool, error)
}

type memoryCooldownStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryCooldownStore() InterventionCooldownStore {
	return &memoryCooldownStore{
		items: make(map[string]time.Time),
	}
}

func (s *memoryCooldownStore) MarkIntervened(userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	s.items[userID] = time.Now().UTC().Add(ttl)
	return nil
}

func (s *memoryCooldownStore) InCooldown(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[userID]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(exp) {
		delete(s.items, userID)
		return false, nil
	}
	return true, nil
}

type redisCooldownStore struct {
	client *redis.Client
	prefix string
}

func NewRedisCooldownStore(client *redis.Client) InterventionCooldownStore {
	if client == nil {
		return nil
	}
	return &redisCooldownStore{
		client: client,
		prefix: "care:cooldown:",
	}
}

func (s *redisCooldownStore) MarkIntervened(userID string, ttl time.Duration) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+userID, time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

func (s *redisCooldownStore) InCooldown(userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	n, err := s.client.Exists(ctx, s.prefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
