package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertigation.io/farmwatch/internal/domain"
)

var alice = domain.Profile{ID: "u-1", Name: "alice", Email: "alice@example.com", Role: domain.RoleFarmer}

type fakeRevocationChecker struct {
	revoked map[string]bool
	err     error
}

func (f fakeRevocationChecker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[tokenID], nil
}

func TestJWTConfigValidateToken_Success(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: []byte("test-signing-key-1234567890123456"),
		Issuer:     "farmwatch",
		ExpiresIn:  time.Hour,
	}

	token, _, err := GenerateToken(cfg, alice)
	require.NoError(t, err)

	claims, err := cfg.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, "Farmer", claims.Role)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.NotBefore)
}

func TestJWTConfigValidateToken_RejectsInvalidIssuer(t *testing.T) {
	issuerCfg := JWTConfig{
		SigningKey: []byte("issuer-key-123456789012345678901234"),
		Issuer:     "farmwatch",
		ExpiresIn:  time.Hour,
	}
	token, _, err := GenerateToken(issuerCfg, alice)
	require.NoError(t, err)

	validatorCfg := JWTConfig{
		SigningKey: issuerCfg.SigningKey,
		Issuer:     "other-issuer",
	}
	_, err = validatorCfg.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTConfigValidateToken_SupportsVerificationKeyRotation(t *testing.T) {
	oldKey := []byte("old-key-123456789012345678901234567890")
	newKey := []byte("new-key-123456789012345678901234567890")

	token, _, err := GenerateToken(JWTConfig{
		SigningKey: oldKey,
		Issuer:     "farmwatch",
		ExpiresIn:  time.Hour,
	}, alice)
	require.NoError(t, err)

	claims, err := JWTConfig{
		SigningKey:       newKey,
		VerificationKeys: [][]byte{oldKey},
		Issuer:           "farmwatch",
	}.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestJWTConfigValidateToken_RejectsNoneSigningMethod(t *testing.T) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "farmwatch",
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = JWTConfig{
		SigningKey: []byte("signing-key-123456789012345678901234"),
		Issuer:     "farmwatch",
	}.ValidateToken(context.Background(), tokenString)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTConfigValidateToken_AllowsTokenWithoutNotBefore(t *testing.T) {
	now := time.Now()
	plainClaims := JWTClaims{
		UserID: "u-legacy",
		Name:   "legacy-user",
		Role:   "Officer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "farmwatch",
			Subject:   "u-legacy",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        "legacy-jti",
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, plainClaims).
		SignedString([]byte("legacy-signing-key-1234567890123456789"))
	require.NoError(t, err)

	claims, err := JWTConfig{
		SigningKey: []byte("legacy-signing-key-1234567890123456789"),
		Issuer:     "farmwatch",
	}.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-legacy", claims.UserID)
	assert.Nil(t, claims.NotBefore)
}

func TestJWTConfigValidateToken_RevocationCheck(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: []byte("revocation-key-1234567890123456789012"),
		Issuer:     "farmwatch",
		ExpiresIn:  time.Hour,
	}
	token, _, err := GenerateToken(cfg, alice)
	require.NoError(t, err)

	claims, err := cfg.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	_, err = JWTConfig{
		SigningKey: cfg.SigningKey,
		Issuer:     "farmwatch",
		RevocationChecker: fakeRevocationChecker{
			revoked: map[string]bool{claims.ID: true},
		},
	}.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestJWTConfigValidateToken_RequiresSigningKey(t *testing.T) {
	token, _, err := GenerateToken(JWTConfig{
		SigningKey: []byte("key-to-sign-valid-token-1234567890123456"),
		Issuer:     "farmwatch",
		ExpiresIn:  time.Hour,
	}, alice)
	require.NoError(t, err)

	_, err = JWTConfig{Issuer: "farmwatch"}.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenUnverifiable)
	assert.ErrorIs(t, err, ErrJWTSigningKeyMissing)
}

func TestJWTConfigValidateToken_RevocationCheckerError(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: []byte("revocation-error-key-1234567890123456"),
		Issuer:     "farmwatch",
		ExpiresIn:  time.Hour,
	}
	token, _, err := GenerateToken(cfg, alice)
	require.NoError(t, err)

	_, err = JWTConfig{
		SigningKey: cfg.SigningKey,
		Issuer:     cfg.Issuer,
		RevocationChecker: fakeRevocationChecker{
			err: errors.New("db down"),
		},
	}.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check token revocation")
}

func sessionEcho(c *gin.Context) {
	s := SessionFrom(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": s.UserID, "role": s.Role, "authenticated": s.Authenticated})
}

func TestJWTAuth(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: []byte("middleware-key-123456789012345678901"),
		Issuer:     "farmwatch",
		ExpiresIn:  time.Hour,
	}
	token, _, err := GenerateToken(cfg, alice)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", JWTAuth(cfg), sessionEcho)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("valid bearer", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u-1","role":"Farmer","authenticated":true}`, w.Body.String())
	})

	t.Run("query token ignored without upgrade", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("query token on websocket upgrade", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestJWTAuth_RejectsUnknownRole(t *testing.T) {
	cfg := JWTConfig{SigningKey: []byte("role-key-12345678901234567890123456"), Issuer: "farmwatch", ExpiresIn: time.Hour}
	token, _, err := GenerateToken(cfg, domain.Profile{ID: "u-9", Role: "Superuser"})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", JWTAuth(cfg), sessionEcho)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalJWTAuth(t *testing.T) {
	cfg := JWTConfig{SigningKey: []byte("optional-key-1234567890123456789012"), Issuer: "farmwatch", ExpiresIn: time.Hour}
	router := gin.New()
	router.GET("/nav", OptionalJWTAuth(cfg), sessionEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nav", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"","role":"","authenticated":false}`, w.Body.String())
}
