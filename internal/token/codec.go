package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Baragji/Blueprint-creator/internal/domain"
)

// Config holds the signing parameters shared by both token kinds.
type Config struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies access and refresh tokens. Tokens are HS256 only;
// any other algorithm in a presented token is rejected.
type Codec struct {
	cfg Config
}

// AccessClaims is the payload of an access token. Access tokens are
// self-contained: requests are authenticated from the signature alone, plus
// an optional blacklist lookup by ID.
type AccessClaims struct {
	Email          string              `json:"email"`
	OrganizationID string              `json:"organizationId"`
	Role           domain.Role         `json:"role"`
	Permissions    []domain.Permission `json:"permissions"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. The ID joins the token to
// its server-side record; a verified token whose ID is absent from the store
// is invalid.
type RefreshClaims struct {
	OrganizationID string `json:"organizationId"`
	jwt.RegisteredClaims
}

// Pair is the token bundle returned to clients.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// NewCodec validates the configuration and returns a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: secret is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: TTLs must be positive")
	}
	return &Codec{cfg: cfg}, nil
}

// SignAccess issues an access token for the profile. The returned expiresIn
// is in seconds.
func (c *Codec) SignAccess(profile domain.UserProfile) (string, *AccessClaims, int64, error) {
	now := time.Now()
	claims := &AccessClaims{
		Email:          profile.Email,
		OrganizationID: profile.OrganizationID,
		Role:           profile.Role,
		Permissions:    profile.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   profile.ID,
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.AccessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.Secret)
	if err != nil {
		return "", nil, 0, fmt.Errorf("sign access token: %w", err)
	}
	return signed, claims, int64(c.cfg.AccessTTL.Seconds()), nil
}

// SignRefresh issues a refresh token with a fresh unique token ID. The caller
// is responsible for persisting the ID in the session store.
func (c *Codec) SignRefresh(profile domain.UserProfile) (string, *RefreshClaims, string, int64, error) {
	now := time.Now()
	tokenID := uuid.NewString()
	claims := &RefreshClaims{
		OrganizationID: profile.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   profile.ID,
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.RefreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.Secret)
	if err != nil {
		return "", nil, "", 0, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, claims, tokenID, int64(c.cfg.RefreshTTL.Seconds()), nil
}

// GeneratePair issues both tokens for the profile. It does not touch the
// session store; callers persist the refresh claims afterwards.
func (c *Codec) GeneratePair(profile domain.UserProfile) (Pair, *RefreshClaims, error) {
	access, _, expiresIn, err := c.SignAccess(profile)
	if err != nil {
		return Pair{}, nil, err
	}
	refresh, refreshClaims, _, _, err := c.SignRefresh(profile)
	if err != nil {
		return Pair{}, nil, err
	}
	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, refreshClaims, nil
}

// VerifyAccess checks signature, expiry, issuer, and audience. It returns
// domain.ErrTokenExpired when expiry is the only failure and
// domain.ErrInvalidToken for everything else.
func (c *Codec) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh is VerifyAccess for refresh tokens.
func (c *Codec) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) verify(tokenStr string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ErrTokenExpired
		}
		return domain.ErrInvalidToken
	}
	if !token.Valid {
		return domain.ErrInvalidToken
	}
	return nil
}
