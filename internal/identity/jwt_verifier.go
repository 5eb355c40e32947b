package identity

import (
	"fmt"
	"time"

	"remark-go/internal/config"
	"remark-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 身份凭证声明
type Claims struct {
	ExternalID    int64   `json:"external_id"`
	DisplayName   string  `json:"display_name"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	ModeratorFlag bool    `json:"moderator_flag"`
	jwt.RegisteredClaims
}

// JWTVerifier 基于HMAC签名的身份凭证校验器
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(cfg *config.IdentityConfig) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify 验签并提取身份信息
func (v *JWTVerifier) Verify(credential string) (*service.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if v.issuer != "" {
		if issuer, err := claims.GetIssuer(); err != nil || issuer != v.issuer {
			return nil, fmt.Errorf("unexpected issuer")
		}
	}
	if claims.ExternalID == 0 {
		return nil, fmt.Errorf("missing external_id claim")
	}

	return &service.Identity{
		ExternalID:    claims.ExternalID,
		DisplayName:   claims.DisplayName,
		AvatarURL:     claims.AvatarURL,
		ModeratorFlag: claims.ModeratorFlag,
	}, nil
}

// Issue 签发凭证，有效期24小时
func (v *JWTVerifier) Issue(identity *service.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		ExternalID:    identity.ExternalID,
		DisplayName:   identity.DisplayName,
		AvatarURL:     identity.AvatarURL,
		ModeratorFlag: identity.ModeratorFlag,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
