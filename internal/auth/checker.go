package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

// Checker resolves a session token to the logged in user's id.
type Checker interface {
	UserID(ctx context.Context, token string) (string, error)
}

type LoginTestChecker struct {
	Sessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		Sessions: map[string]string{},
	}
}

func (c *LoginTestChecker) UserID(_ context.Context, token string) (string, error) {
	userID, ok := c.Sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	return userID, nil
}
