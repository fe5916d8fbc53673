package token

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(client *redis.Client) *redisRepository {
	return &redisRepository{client}
}

// redisRepository stores one key per issued refresh token so individual
// tokens can be revoked on rotation and all of a user's tokens on sign out.
type redisRepository struct {
	client *redis.Client
}

func (r redisRepository) SetRefreshToken(userId uint, tokenId string, expiresIn time.Duration) error {
	return r.client.Set(refreshTokenKey(userId, tokenId), "1", expiresIn).Err()
}

func (r redisRepository) DeleteRefreshToken(userId uint, previousTokenId string) error {
	deleted, err := r.client.Del(refreshTokenKey(userId, previousTokenId)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("refresh token not found for user %d", userId)
	}
	return nil
}

func (r redisRepository) DeleteRefreshTokens(userId uint) error {
	keys, err := r.client.Keys(refreshTokenKey(userId, "*")).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(keys...).Err()
}

func refreshTokenKey(userId uint, tokenId string) string {
	return fmt.Sprintf("refresh-token:%d:%s", userId, tokenId)
}
