package passreset

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	tokenKeyPrefix = "passreset:token:"
	tokenTTL       = 30 * time.Minute
)

// TokenStore 管理密码重置令牌的存储与校验
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

// TokenData 令牌关联的账号。重置时按 Role+Email 回查，
// 避免令牌存活期间账号迁移导致写错行。
type TokenData struct {
	Role   string `json:"role"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Generate 生成加密安全的令牌并存入 Redis
func (s *TokenStore) Generate(ctx context.Context, data *TokenData) (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	token := hex.EncodeToString(bytes)

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token data: %w", err)
	}

	key := tokenKeyPrefix + token
	if err := s.rdb.Set(ctx, key, payload, tokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Consume 校验令牌并返回关联账号。
// 校验即消费，删掉已用的令牌防止重放。
func (s *TokenStore) Consume(ctx context.Context, token string) (*TokenData, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	key := tokenKeyPrefix + token

	var payload string
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return fmt.Errorf("invalid or expired token")
		}
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}
		payload = val

		_, err = tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, err
	}

	var data TokenData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token data: %w", err)
	}

	return &data, nil
}
