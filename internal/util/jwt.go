package util

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims 从后端签发的令牌中读出的字段；客户端不持有密钥，只做解码不做验签
type TokenClaims struct {
	UserID    int
	Email     string
	Name      string
	ExpiresAt time.Time
}

var ErrOpaqueToken = errors.New("token is not a decodable JWT")

func DecodeToken(tokenString string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrOpaqueToken
	}

	tc := &TokenClaims{
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
	}

	if id, ok := intClaim(claims, "user_id"); ok {
		tc.UserID = id
	} else if id, ok := intClaim(claims, "sub"); ok {
		tc.UserID = id
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	return tc, nil
}

// Expired 没有 exp 的令牌视为未过期，交由后端判断
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func intClaim(claims jwt.MapClaims, key string) (int, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}
