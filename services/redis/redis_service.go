package redis_service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Retention for processed-webhook markers. Long enough to flag the same
// delivery being replayed, short enough not to grow without bound.
const processedWebhookTTL = 72 * time.Hour

type RedisService struct {
	client *redis.Client
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisService(config *RedisConfig) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisService{
		client: client,
	}, nil
}

func processedKey(provider, reference string) string {
	return fmt.Sprintf("webhook:processed:%s:%s", provider, reference)
}

// MarkWebhookProcessed records that a verified notification for this
// reference has been accepted. Verification itself stays side-effect
// free; the marker only helps spot replayed deliveries.
func (r *RedisService) MarkWebhookProcessed(ctx context.Context, provider, reference string) error {
	return r.client.Set(ctx, processedKey(provider, reference), time.Now().UTC().Format(time.RFC3339), processedWebhookTTL).Err()
}

// WasWebhookProcessed reports whether a verified notification for this
// reference was already accepted.
func (r *RedisService) WasWebhookProcessed(ctx context.Context, provider, reference string) (bool, error) {
	_, err := r.client.Get(ctx, processedKey(provider, reference)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisService) Close() error {
	return r.client.Close()
}
