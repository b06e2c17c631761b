package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Baragji/Blueprint-creator/internal/domain"
	"github.com/Baragji/Blueprint-creator/internal/token"
)

var testSecret = []byte("test-secret-test-secret-test-secr")

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		Secret:     testSecret,
		Issuer:     "blueprint-api",
		Audience:   "blueprint-clients",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return codec
}

func testProfile() domain.UserProfile {
	return domain.NewUserProfile(domain.User{
		ID:             "user-1",
		Email:          "dev@example.com",
		FirstName:      "Dev",
		LastName:       "Eloper",
		Role:           domain.RoleDeveloper,
		OrganizationID: "org-1",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	codec := testCodec(t)

	signed, claims, expiresIn, err := codec.SignAccess(testProfile())
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, int64(900), expiresIn)

	parsed, err := codec.VerifyAccess(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", parsed.Subject)
	require.Equal(t, "dev@example.com", parsed.Email)
	require.Equal(t, "org-1", parsed.OrganizationID)
	require.Equal(t, domain.RoleDeveloper, parsed.Role)
	require.Equal(t, claims.ID, parsed.ID)
	require.Contains(t, parsed.Permissions, domain.PermAgentExecute)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	codec := testCodec(t)

	signed, claims, tokenID, _, err := codec.SignRefresh(testProfile())
	require.NoError(t, err)
	require.Equal(t, tokenID, claims.ID)

	parsed, err := codec.VerifyRefresh(signed)
	require.NoError(t, err)
	require.Equal(t, tokenID, parsed.ID)
	require.Equal(t, "user-1", parsed.Subject)
}

func TestGeneratePair(t *testing.T) {
	codec := testCodec(t)

	pair, refreshClaims, err := codec.GeneratePair(testProfile())
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, int64(900), pair.ExpiresIn)

	parsed, err := codec.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, refreshClaims.ID, parsed.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec := testCodec(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "blueprint-api",
		Audience:  jwt.ClaimStrings{"blueprint-clients"},
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	codec := testCodec(t)

	foreign, err := token.NewCodec(token.Config{
		Secret:     []byte("a-completely-different-secret-key"),
		Issuer:     "blueprint-api",
		Audience:   "blueprint-clients",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	signed, _, _, err := foreign.SignAccess(testProfile())
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	codec := testCodec(t)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "blueprint-api",
		Audience:  jwt.ClaimStrings{"blueprint-clients"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	codec := testCodec(t)

	other, err := token.NewCodec(token.Config{
		Secret:     testSecret,
		Issuer:     "blueprint-api",
		Audience:   "other-clients",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	signed, _, _, err := other.SignAccess(testProfile())
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := token.NewCodec(token.Config{
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	require.Error(t, err)
}
