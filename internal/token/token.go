// Package token issues and verifies the access/refresh credential pair.
// Refresh tokens can be invalidated through a Redis-backed denylist; when
// Redis is unavailable invalidation degrades to a no-op.
package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	issuer   = "inkwell-api"
	audience = "inkwell-client"

	accessTTL  = 24 * time.Hour
	refreshTTL = 7 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Pair is an access/refresh credential pair.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer creates and verifies JWT credentials.
type Issuer struct {
	secret []byte
	rdb    *redis.Client
}

// NewIssuer returns an Issuer signing with the given secret. rdb may be nil.
func NewIssuer(secret string, rdb *redis.Client) *Issuer {
	return &Issuer{secret: []byte(secret), rdb: rdb}
}

// IssuePair returns a fresh access/refresh pair for the user.
func (i *Issuer) IssuePair(user *models.User) (Pair, error) {
	access, err := i.sign(user, typeAccess, accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(user, typeRefresh, refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (i *Issuer) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"iss":  issuer,
		"aud":  audience,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  uuid.NewString(),
		"typ":  tokenType,
		"role": string(user.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// VerifyAccess parses an access token and returns the user ID it carries.
func (i *Issuer) VerifyAccess(tokenString string) (uint, error) {
	claims, err := i.parse(tokenString, typeAccess)
	if err != nil {
		return 0, err
	}
	return subjectID(claims)
}

// Invalidate revokes a refresh token by adding its jti to the denylist for
// the remainder of its lifetime. Invalid or expired tokens and Redis
// failures all return an error; callers on the logout path swallow it.
func (i *Issuer) Invalidate(ctx context.Context, refreshToken string) error {
	claims, err := i.parse(refreshToken, typeRefresh)
	if err != nil {
		return err
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return errors.New("token has no jti")
	}
	if i.rdb == nil {
		return nil
	}

	ttl := refreshTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if remaining := time.Until(exp.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return i.rdb.Set(ctx, denylistKey(jti), "1", ttl).Err()
}

// Revoked reports whether a refresh token has been invalidated.
func (i *Issuer) Revoked(ctx context.Context, refreshToken string) (bool, error) {
	claims, err := i.parse(refreshToken, typeRefresh)
	if err != nil {
		return true, err
	}
	jti, _ := claims["jti"].(string)
	if jti == "" || i.rdb == nil {
		return false, nil
	}
	n, err := i.rdb.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (i *Issuer) parse(tokenString, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
	)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return nil, fmt.Errorf("expected %s token", wantType)
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uint, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("invalid subject claim")
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, errors.New("invalid user ID in token")
	}
	return uint(id), nil
}

func denylistKey(jti string) string {
	return "token:denylist:" + jti
}
