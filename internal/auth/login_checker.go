package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (lc *LoginChecker) UserID(ctx context.Context, token string) (string, error) {
	session, err := lc.redisClient.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return "", err
	}
	if len(session) == 0 {
		return "", ErrSessionNotFound
	}

	createdAtUnix, err := strconv.ParseInt(session[fieldCreatedAt], 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse session created at: %w", err)
	}
	if time.Since(time.Unix(createdAtUnix, 0)) > lc.ttl {
		return "", ErrSessionNotFound
	}

	userID := session[fieldUserID]
	if userID == "" {
		return "", ErrSessionNotFound
	}
	return userID, nil
}
