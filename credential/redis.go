package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// errRedisUnavailable wraps backend failures so callers can distinguish an
// absent key from a dead connection.
var errRedisUnavailable = errors.New("credential redis unavailable")

const (
	fieldToken           = "token"
	fieldDisplayName     = "display_name"
	fieldUserID          = "user_id"
	fieldRememberedEmail = "remembered_email"
	fieldRememberMe      = "remember_me"
	fieldTheme           = "theme"
)

// RedisStore keeps the credential record in a single Redis hash, one hash per
// logical user, keyed "<prefix>:cred:<owner>". It serves headless
// deployments of the core where the process is not the phone.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore returns a store scoped to owner under prefix.
func NewRedisStore(client *redis.Client, prefix, owner string) *RedisStore {
	if prefix == "" {
		prefix = "ak"
	}
	return &RedisStore{
		redis: client,
		key:   prefix + ":cred:" + owner,
	}
}

func (s *RedisStore) setField(ctx context.Context, field, value string) error {
	if err := s.redis.HSet(ctx, s.key, field, value).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) getField(ctx context.Context, field string) (string, error) {
	value, err := s.redis.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return value, nil
}

func (s *RedisStore) SaveToken(ctx context.Context, token string) error {
	return s.setField(ctx, fieldToken, token)
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	return s.getField(ctx, fieldToken)
}

func (s *RedisStore) SaveDisplayName(ctx context.Context, name string) error {
	return s.setField(ctx, fieldDisplayName, name)
}

func (s *RedisStore) DisplayName(ctx context.Context) (string, error) {
	return s.getField(ctx, fieldDisplayName)
}

func (s *RedisStore) SaveUserID(ctx context.Context, id string) error {
	return s.setField(ctx, fieldUserID, id)
}

func (s *RedisStore) UserID(ctx context.Context) (string, error) {
	return s.getField(ctx, fieldUserID)
}

func (s *RedisStore) SaveRememberedEmail(ctx context.Context, email string) error {
	return s.setField(ctx, fieldRememberedEmail, email)
}

func (s *RedisStore) RememberedEmail(ctx context.Context) (string, error) {
	return s.getField(ctx, fieldRememberedEmail)
}

func (s *RedisStore) SetRememberMe(ctx context.Context, remember bool) error {
	value := "0"
	if remember {
		value = "1"
	}
	return s.setField(ctx, fieldRememberMe, value)
}

func (s *RedisStore) RememberMe(ctx context.Context) (bool, error) {
	value, err := s.getField(ctx, fieldRememberMe)
	if err != nil {
		return false, err
	}
	return value == "1", nil
}

func (s *RedisStore) SaveTheme(ctx context.Context, theme string) error {
	return s.setField(ctx, fieldTheme, theme)
}

func (s *RedisStore) Theme(ctx context.Context) (string, error) {
	return s.getField(ctx, fieldTheme)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.HDel(ctx, s.key, fieldToken, fieldDisplayName, fieldUserID).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}
