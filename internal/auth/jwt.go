package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWeakSecret   = errors.New("jwt secret must be at least 32 characters")
)

const (
	audienceAccess   = "storefront"
	audienceRemember = "shop_user"
	minSecretLength  = 32
)

// Claims identify one storefront session. TelegramUserID is 0 for anonymous
// visitors, whose Subject is an anonymous session key.
type Claims struct {
	TelegramUserID int64  `json:"telegram_user_id"`
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// Anonymous reports whether the session has no Telegram identity.
func (c *Claims) Anonymous() bool {
	return c.TelegramUserID == 0
}

// SessionKey is the storage namespace the claims grant access to.
func (c *Claims) SessionKey() string {
	return c.Subject
}

// User rebuilds the identity carried by the claims, nil when anonymous.
func (c *Claims) User() *User {
	if c.Anonymous() {
		return nil
	}
	return &User{ID: c.TelegramUserID, Username: c.Username, FirstName: c.FirstName}
}

// JWTService handles JWT token operations
type JWTService struct {
	secretKey          []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secretKey:          []byte(secretKey),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// ValidateSecret rejects secrets too short for HS256.
func ValidateSecret(secret string) error {
	if len(secret) < minSecretLength {
		return ErrWeakSecret
	}
	return nil
}

// GenerateAccessToken creates an access token for a Telegram user.
func (s *JWTService) GenerateAccessToken(user User, role string) (string, time.Time, error) {
	return s.sign(Claims{
		TelegramUserID: user.ID,
		Username:       user.Username,
		FirstName:      user.FirstName,
		Role:           role,
	}, user.SessionKey(), audienceAccess, s.accessTokenExpiry)
}

// GenerateAnonymousToken creates an access token for a visitor without identity.
func (s *JWTService) GenerateAnonymousToken(sessionID string) (string, time.Time, error) {
	return s.sign(Claims{Role: RoleCustomer}, AnonymousSessionKey(sessionID), audienceAccess, s.accessTokenExpiry)
}

// GenerateRefreshToken creates a new refresh token
func (s *JWTService) GenerateRefreshToken(telegramUserID int64) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.refreshTokenExpiry)

	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Subject:   strconv.FormatInt(telegramUserID, 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// GenerateRememberToken signs the remembered-user record kept in the blob
// store. It lives as long as a refresh token.
func (s *JWTService) GenerateRememberToken(user User) (string, time.Time, error) {
	return s.sign(Claims{
		TelegramUserID: user.ID,
		Username:       user.Username,
		FirstName:      user.FirstName,
		Role:           RoleCustomer,
	}, user.SessionKey(), audienceRemember, s.refreshTokenExpiry)
}

func (s *JWTService) sign(claims Claims, subject, audience string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateAccessToken validates an access token and returns claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, audienceAccess)
}

// ValidateRememberToken validates a remembered-user record.
func (s *JWTService) ValidateRememberToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, audienceRemember)
}

func (s *JWTService) parse(tokenString, audience string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, s.keyFunc, jwt.WithAudience(audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return s.secretKey, nil
}

// ValidateRefreshToken validates a refresh token and returns the Telegram user ID
func (s *JWTService) ValidateRefreshToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || len(claims.Audience) != 0 {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// GetAccessTokenExpiry returns the access token expiry duration
func (s *JWTService) GetAccessTokenExpiry() time.Duration {
	return s.accessTokenExpiry
}

// GetRefreshTokenExpiry returns the refresh token expiry duration
func (s *JWTService) GetRefreshTokenExpiry() time.Duration {
	return s.refreshTokenExpiry
}
