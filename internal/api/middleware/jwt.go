package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/access"
	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/pkg/logger"
)

var (
	// ErrTokenRevoked is returned for tokens invalidated by logout.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrJWTSigningKeyMissing is returned when no key is configured.
	ErrJWTSigningKeyMissing = errors.New("jwt signing key missing")

	errRevocationCheck = errors.New("check token revocation")
)

// accessTokenQueryParam carries the token on websocket upgrades, where
// browsers cannot set an Authorization header.
const accessTokenQueryParam = "access_token"

// JWTClaims defines custom JWT claims for farmwatch sessions.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Session converts validated claims into the caller's session.
func (c *JWTClaims) Session() (access.Session, error) {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return access.Session{}, err
	}
	return access.Session{UserID: c.UserID, Name: c.Name, Role: role, Authenticated: true}, nil
}

// RevocationChecker reports whether a token id was revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTConfig holds JWT signing configuration.
type JWTConfig struct {
	SigningKey []byte
	// VerificationKeys are retired keys still accepted for validation.
	VerificationKeys  [][]byte
	Issuer            string
	ExpiresIn         time.Duration
	RevocationChecker RevocationChecker
}

// GenerateToken creates a signed JWT for the given profile.
func GenerateToken(cfg JWTConfig, profile domain.Profile) (string, *JWTClaims, error) {
	now := time.Now()
	jti, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("generate token id: %w", err)
	}

	claims := &JWTClaims{
		UserID: profile.ID,
		Name:   profile.Name,
		Role:   string(profile.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Issuer:    cfg.Issuer,
			Subject:   profile.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ExpiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.SigningKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, claims, nil
}

// ValidateToken parses and verifies tokenString against the signing key and
// every verification key, then consults the revocation checker.
func (cfg JWTConfig) ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error) {
	keys := make([]jwt.VerificationKey, 0, 1+len(cfg.VerificationKeys))
	if len(cfg.SigningKey) > 0 {
		keys = append(keys, cfg.SigningKey)
	}
	for _, k := range cfg.VerificationKeys {
		if len(k) > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %w", jwt.ErrTokenUnverifiable, ErrJWTSigningKeyMissing)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return jwt.VerificationKeySet{Keys: keys}, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	if cfg.RevocationChecker != nil && claims.ID != "" {
		revoked, err := cfg.RevocationChecker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errRevocationCheck, err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// JWTAuth returns a Gin middleware that requires a valid Bearer token and
// populates the request session.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			AbortWithAppError(c, apperrors.Unauthorized(apperrors.CodeUnauthorized, err.Error()))
			return
		}
		if !authenticate(c, cfg, tokenString) {
			return
		}
		c.Next()
	}
}

// OptionalJWTAuth populates the session when a valid token is present and
// leaves the request anonymous otherwise.
func OptionalJWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.Next()
			return
		}
		claims, err := cfg.ValidateToken(c.Request.Context(), tokenString)
		if err == nil {
			if s, serr := claims.Session(); serr == nil {
				setSession(c, claims, s)
			}
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg JWTConfig, tokenString string) bool {
	claims, err := cfg.ValidateToken(c.Request.Context(), tokenString)
	if err != nil {
		msg := "invalid token"
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			msg = "token expired"
		case errors.Is(err, ErrTokenRevoked):
			msg = "token revoked"
		case errors.Is(err, errRevocationCheck):
			logger.Error("token revocation check failed", zap.Error(err))
		}
		AbortWithAppError(c, apperrors.Unauthorized(apperrors.CodeUnauthorized, msg))
		return false
	}
	s, err := claims.Session()
	if err != nil {
		AbortWithAppError(c, apperrors.Unauthorized(apperrors.CodeUnauthorized, "invalid token claims"))
		return false
	}
	setSession(c, claims, s)
	return true
}

func setSession(c *gin.Context, claims *JWTClaims, s access.Session) {
	c.Set("user_id", s.UserID)
	c.Set("role", string(s.Role))
	ctx := WithSession(c.Request.Context(), s)
	ctx = context.WithValue(ctx, ctxKeyClaims, claims)
	c.Request = c.Request.WithContext(ctx)
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if t := c.Query(accessTokenQueryParam); t != "" {
				return t, nil
			}
		}
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}
