// Package token decodes access-token claims without verifying signatures.
// Signature validation is the server's job; the client only needs the expiry
// and subject fields to drive the session lifecycle. Any malformed token is
// treated as expired.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	errs "github.com/brokerdeck/go-broker-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the decoded, unverified payload of an access token. Zero-valued
// fields were absent from the payload.
type Claims struct {
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
}

// Decode extracts the claims of a token without verifying its signature.
// It fails with ErrDecodeFailure on any malformed segment, decode error, or
// parse error; callers must treat failure as "no claims available".
func Decode(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errs.Wrapf(errs.ErrDecodeFailure, "[token Decode] empty token")
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errs.Wrapf(errs.ErrDecodeFailure, "[token Decode] %v", err)
	}

	mapClaims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errs.Wrapf(errs.ErrDecodeFailure, "[token Decode] extracting claims")
	}

	claims := &Claims{}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = int64(exp)
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = int64(iat)
	}
	if userID, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = int64(userID)
	}
	claims.Email, _ = mapClaims["email"].(string)

	return claims, nil
}

// IsExpired reports whether a token has expired. A token that cannot be
// decoded or carries no expiry claim counts as expired.
func IsExpired(rawToken string) bool {
	claims, err := Decode(rawToken)
	if err != nil || claims.ExpiresAt == 0 {
		return true
	}
	return claims.ExpiresAt < NowTimeFunc().Unix()
}

// SecondsUntilExpiry returns the remaining token lifetime in seconds,
// never negative. It returns 0 when the token cannot be decoded.
func SecondsUntilExpiry(rawToken string) int64 {
	claims, err := Decode(rawToken)
	if err != nil || claims.ExpiresAt == 0 {
		return 0
	}
	remaining := claims.ExpiresAt - NowTimeFunc().Unix()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpiringSoon reports whether a still-valid token will expire within the
// given threshold.
func IsExpiringSoon(rawToken string, threshold time.Duration) bool {
	remaining := SecondsUntilExpiry(rawToken)
	return remaining > 0 && remaining < int64(threshold.Seconds())
}
