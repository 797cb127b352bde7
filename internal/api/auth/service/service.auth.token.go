package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TokenRevoker lưu jti của các token đã đăng xuất cho tới khi token hết hạn
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisTokenRevoker lưu danh sách thu hồi trên Redis, dùng chung giữa nhiều instance
type RedisTokenRevoker struct {
	client redis.Cmdable
	prefix string
}

// NewRedisTokenRevoker tạo revoker trên Redis
func NewRedisTokenRevoker(client redis.Cmdable) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client, prefix: "perishpro:revoked:"}
}

// Revoke đánh dấu jti bị thu hồi, key tự hết hạn sau ttl
func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+jti, 1, ttl).Err()
}

// IsRevoked kiểm tra jti đã bị thu hồi chưa
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryTokenRevoker danh sách thu hồi trong bộ nhớ, dùng khi không cấu hình Redis
type MemoryTokenRevoker struct {
	cache *utility.Cache
}

// NewMemoryTokenRevoker tạo revoker trong bộ nhớ
func NewMemoryTokenRevoker(cache *utility.Cache) *MemoryTokenRevoker {
	return &MemoryTokenRevoker{cache: cache}
}

// Revoke lưu jti với TTL bằng thời gian sống còn lại của token
func (r *MemoryTokenRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.cache.SetWithTTL(jti, struct{}{}, ttl)
	return nil
}

// IsRevoked kiểm tra jti trong cache
func (r *MemoryTokenRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := r.cache.Get(jti)
	return found, nil
}

// TokenService phát hành, kiểm tra và thu hồi JWT (HS256)
type TokenService struct {
	secret  []byte
	expiry  time.Duration
	revoker TokenRevoker
	now     func() time.Time
}

// NewTokenService tạo TokenService. revoker nil thì không hỗ trợ thu hồi.
func NewTokenService(secret string, expiry time.Duration, revoker TokenRevoker) *TokenService {
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:  []byte(secret),
		expiry:  expiry,
		revoker: revoker,
		now:     time.Now,
	}
}

// Expiry thời gian sống của token
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue tạo token mới cho user
func (s *TokenService) Issue(userID string) (string, *models.Claims, error) {
	now := s.now()
	claims := &models.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse kiểm tra chữ ký, thuật toán và hạn của token
func (s *TokenService) Parse(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	if claims.UserID == "" {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}

// VerifyToken parse token và kiểm tra danh sách thu hồi, trả về user id
func (s *TokenService) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return "", err
	}
	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Error("Token revocation lookup failed")
			return "", common.NewInternalError(err)
		}
		if revoked {
			return "", common.ErrTokenInvalid
		}
	}
	return claims.UserID, nil
}

// Revoke thu hồi token tới khi hết hạn. Token không hợp lệ thì bỏ qua.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	if s.revoker == nil || tokenString == "" {
		return nil
	}
	claims, err := s.Parse(tokenString)
	if err != nil {
		if errors.Is(err, common.ErrTokenInvalid) {
			return nil
		}
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return common.NewInternalError(err)
	}
	logger.WithContext(ctx).WithFields(logrus.Fields{
		"user_id": claims.UserID,
		"jti":     claims.ID,
	}).Debug("Token revoked")
	return nil
}
