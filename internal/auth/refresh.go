package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// refreshToken pairs an opaque token with the username it was issued to.
type refreshToken struct {
	Username  string
	ExpiresAt time.Time
}

const refreshTTL = 7 * 24 * time.Hour

var (
	refreshTokens = map[string]refreshToken{}
	mu            sync.Mutex
)

// IssueRefreshToken creates an opaque long-lived token for the user.
func IssueRefreshToken(username string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	mu.Lock()
	refreshTokens[token] = refreshToken{
		Username:  username,
		ExpiresAt: time.Now().Add(refreshTTL),
	}
	mu.Unlock()
	return token, nil
}

// RedeemRefreshToken returns the username a valid token belongs to and
// invalidates it. Refresh tokens are single use.
func RedeemRefreshToken(token string) (string, bool) {
	mu.Lock()
	defer mu.Unlock()

	rt, ok := refreshTokens[token]
	if !ok || time.Now().After(rt.ExpiresAt) {
		delete(refreshTokens, token)
		return "", false
	}
	delete(refreshTokens, token)
	return rt.Username, true
}

// StartRefreshTokenCleaner periodically drops expired tokens.
func StartRefreshTokenCleaner(interval time.Duration) {
	for {
		time.Sleep(interval)
		mu.Lock()
		now := time.Now()
		for token, rt := range refreshTokens {
			if now.After(rt.ExpiresAt) {
				delete(refreshTokens, token)
			}
		}
		mu.Unlock()
	}
}
