package utils

import (
	"net/url"
	"testing"
	"time"

	"freshfetch/config"
	"freshfetch/models"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	config.AppConfig = &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
}

func TestPasswordArgon2RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.False(t, IsLegacyHash(hash))

	ok, rehash, err := VerifyPassword(hash, "s3cret!")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, _, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsLegacyHash(string(legacy)))

	ok, rehash, err := VerifyPassword(string(legacy), "old-pass")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rehash)

	ok, rehash, err = VerifyPassword(string(legacy), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, rehash)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("abc123", "jane@example.com", models.RoleManager)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenRejectsTamperedAndExpired(t *testing.T) {
	token, err := GenerateToken("abc123", "jane@example.com", models.RoleUser)
	require.NoError(t, err)
	_, err = ValidateToken(token + "x")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "abc123",
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "x", Role: models.RoleAdmin})
	signed, err = other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fresh-red-apples", Slugify("Fresh Red Apples"))
	assert.Equal(t, "organic-milk-1l", Slugify("  Organic  Milk (1L)! "))
	assert.Equal(t, "", Slugify("   "))
}

func TestPagination(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))

	meta := BuildMeta(models.Page{Page: 2, Limit: 10}, 25)
	assert.Equal(t, 3, meta.TotalPages)

	links := BuildLinks("/orders", url.Values{"status": {"pending"}}, meta)
	assert.Equal(t, "/orders?limit=10&page=2&status=pending", links.Self)
	assert.Equal(t, "/orders?limit=10&page=3&status=pending", links.Next)
	assert.Equal(t, "/orders?limit=10&page=1&status=pending", links.Prev)

	last := BuildLinks("/orders", url.Values{}, BuildMeta(models.Page{Page: 1, Limit: 10}, 5))
	assert.Empty(t, last.Next)
	assert.Empty(t, last.Prev)
}

func TestDomainValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	type payload struct {
		Role   string `validate:"omitempty,role"`
		Status string `validate:"omitempty,orderstatus"`
		Method string `validate:"omitempty,paymentmethod"`
	}

	assert.NoError(t, v.Struct(payload{Role: "manager", Status: "shipped", Method: "COD"}))
	assert.NoError(t, v.Struct(payload{}))
	for _, method := range []string{"card", "Stripe", "Online", "cod"} {
		assert.NoError(t, v.Struct(payload{Method: method}), method)
	}
	assert.Error(t, v.Struct(payload{Role: "root"}))
	assert.Error(t, v.Struct(payload{Status: "lost"}))
	assert.Error(t, v.Struct(payload{Method: "cash"}))
}
