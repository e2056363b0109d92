package loginhistory

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"evhub/backend/services/admin-console/internal/models"
)

// RedisLog stores entries in a capped redis list.
type RedisLog struct {
	client *redis.Client
	key    string
}

// NewRedisLog returns redis-backed log.
func NewRedisLog(client *redis.Client, key string) *RedisLog {
	if key == "" {
		key = "admin-console:login-history"
	}
	return &RedisLog{client: client, key: key}
}

// Append pushes entry to the head of the list and trims it to MaxEntries.
func (l *RedisLog) Append(ctx context.Context, entry models.LoginEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, l.key, data)
	pipe.LTrim(ctx, l.key, 0, MaxEntries-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (l *RedisLog) Recent(ctx context.Context, limit int) ([]models.LoginEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := l.client.LRange(ctx, l.key, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.LoginEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.LoginEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
