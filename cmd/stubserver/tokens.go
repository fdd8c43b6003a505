package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	defaultAccessTokenTTL  = time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	refreshTokenBytes      = 32
)

// TokenService mints HS256 access tokens and opaque refresh tokens for the
// development backend.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu      sync.Mutex
	refresh map[string]refreshRecord
}

type refreshRecord struct {
	userID    int64
	email     string
	expiresAt time.Time
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{
		secret:     secret,
		accessTTL:  defaultAccessTokenTTL,
		refreshTTL: defaultRefreshTokenTTL,
		refresh:    make(map[string]refreshRecord),
	}
}

// IssueTokens creates an access/refresh token pair for the user.
func (ts *TokenService) IssueTokens(user *User) (accessToken, refreshToken string, expiresIn int64, err error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub":     fmt.Sprintf("%d", user.ID),
		"email":   user.Email,
		"user_id": user.ID,
		"iat":     now.Unix(),
		"exp":     now.Add(ts.accessTTL).Unix(),
		"jti":     uuid.New().String(),
	}

	accessToken, err = jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", "", 0, fmt.Errorf("signing access token: %w", err)
	}

	tokenBytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", 0, fmt.Errorf("generating refresh token: %w", err)
	}
	refreshToken = hex.EncodeToString(tokenBytes)

	ts.mu.Lock()
	ts.refresh[refreshToken] = refreshRecord{
		userID:    user.ID,
		email:     user.Email,
		expiresAt: now.Add(ts.refreshTTL),
	}
	ts.mu.Unlock()

	return accessToken, refreshToken, int64(ts.accessTTL.Seconds()), nil
}

// Rotate exchanges a refresh token for a new pair, invalidating the old one.
func (ts *TokenService) Rotate(refreshToken string, users *UserStore) (string, string, int64, error) {
	ts.mu.Lock()
	record, ok := ts.refresh[refreshToken]
	if ok {
		delete(ts.refresh, refreshToken)
	}
	ts.mu.Unlock()

	if !ok || NowTimeFunc().After(record.expiresAt) {
		return "", "", 0, fmt.Errorf("invalid refresh token")
	}

	user, err := users.GetByEmail(record.email)
	if err != nil {
		return "", "", 0, err
	}
	return ts.IssueTokens(user)
}

// ValidateAccess verifies an access token's signature and expiry, returning
// the subject email.
func (ts *TokenService) ValidateAccess(rawToken string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("token is expired or invalid")
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("invalid claims")
	}
	return email, nil
}
