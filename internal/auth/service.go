package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/liftlog/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "liftlog-session||"
	tokensSetKey     = "liftlog-sessions"
	tokenLength      = 35

	fieldUserID    = "user_id"
	fieldCreatedAt = "created_at"
)

var (
	ErrWrongCredentials = errors.New("wrong username or password")
	ErrSessionNotFound  = errors.New("session not found")
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service logs users in and out. A session is a redis hash holding the
// user id and creation time, keyed by a random token, and expiring after ttl.
// Live tokens are also tracked in a set so stale ones can be swept.
type Service struct {
	users       map[string]User
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	users []User,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	usersByName := make(map[string]User, len(users))
	for _, u := range users {
		usersByName[u.Username] = u
	}
	return &Service{
		users:          usersByName,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (as *Service) Login(ctx context.Context, creds Credentials, createdAt time.Time) (string, error) {
	user, ok := as.users[creds.Username]
	if !ok || !pkg.CheckPasswordHash(creds.Password, user.PasswordHash) {
		return "", ErrWrongCredentials
	}

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return "", err
	}

	key := sessionKey(token)
	if err := as.redisClient.HSet(ctx, key,
		fieldUserID, user.ID,
		fieldCreatedAt, strconv.FormatInt(createdAt.Unix(), 10),
	).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := as.redisClient.Expire(ctx, key, as.ttl).Err(); err != nil {
		return "", fmt.Errorf("set session ttl: %w", err)
	}

	// add token to list of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("track session: %w", err)
	}

	return token, nil
}

// Logout removes the session. The returned bool reports whether it existed.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	deleted, err := as.redisClient.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	return deleted > 0, nil
}

// ScanAndClean runs through all tracked sessions and removes the ones
// older than the ttl or already expired in redis.
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		createdAtUnixStr, err := as.redisClient.HGet(ctx, sessionKey(token), fieldCreatedAt).Result()
		if errors.Is(err, redis.Nil) {
			toRemove = append(toRemove, token)
			continue
		}
		if err != nil {
			log.Errorf("auth service, scan and clean token: %s", err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
		if err != nil {
			log.Errorf("auth service, scan and clean, parse created at: %s", err)
			toRemove = append(toRemove, token)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
			log.Errorf("auth service, clean session: %s", err)
			continue
		}

		// remove token from the list of sessions
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean session: %s", err)
			continue
		}
	}
	log.Debugf("auth service, scan and clean done, removed %d sessions", len(toRemove))
}

// RunScanAndClean sweeps sessions every interval until ctx is done.
func (as *Service) RunScanAndClean(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debugln("auth service, scan and clean loop stopped")
			return
		case <-ticker.C:
			as.ScanAndClean(ctx)
		}
	}
}
