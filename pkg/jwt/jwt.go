package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

const issuer = "bookreview"

// Manager JWT管理器
// 设计说明：
// 1. 单Token机制：登录签发Access Token，接口鉴权只校验签名与有效期
// 2. 无状态：服务端不保存Token，也没有黑名单
type Manager struct {
	secret      string        // JWT签名密钥
	tokenExpire time.Duration // Token有效期
	now         func() time.Time
}

// NewManager 创建JWT管理器
func NewManager(secret string, tokenExpire time.Duration) *Manager {
	return &Manager{
		secret:      secret,
		tokenExpire: tokenExpire,
		now:         time.Now,
	}
}

// Claims 自定义JWT Claims
// payload至少包含用户ID；username便于下游展示
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Token 签发结果
type Token struct {
	AccessToken string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"` // 有效期（秒）
}

// GenerateToken 签发Token
func (m *Manager) GenerateToken(userID uint, username string) (*Token, error) {
	now := m.now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to sign token")
	}

	return &Token{
		AccessToken: signed,
		ExpiresIn:   int64(m.tokenExpire.Seconds()),
	}, nil
}

// ParseToken 解析并验证Token
// 校验：签名算法必须为HMAC、签名正确、exp/nbf有效
// 过期与其他无效情况对外是同一条消息，但错误值不同，便于日志区分
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}
