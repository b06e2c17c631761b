package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Baragji/Blueprint-creator/internal/config"
	"github.com/Baragji/Blueprint-creator/internal/domain"
	"github.com/Baragji/Blueprint-creator/internal/password"
	"github.com/Baragji/Blueprint-creator/internal/repository"
	"github.com/Baragji/Blueprint-creator/internal/session"
	"github.com/Baragji/Blueprint-creator/internal/token"
)

// AuthResult is the payload of a successful registration or login.
type AuthResult struct {
	User         domain.UserProfile
	Organization domain.OrganizationProfile
	Tokens       token.Pair
}

// ClientInfo carries optional request metadata recorded on session records.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService implements the registration, login, refresh, and logout use
// cases over the directory, token codec, and session manager.
type AuthService struct {
	directory repository.Directory
	codec     *token.Codec
	sessions  *session.Manager
	hasher    *password.Hasher
	cfg       config.Config
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires the auth use cases.
func NewAuthService(
	directory repository.Directory,
	codec *token.Codec,
	sessions *session.Manager,
	hasher *password.Hasher,
	cfg config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		directory: directory,
		codec:     codec,
		sessions:  sessions,
		hasher:    hasher,
		cfg:       cfg,
		logger:    logger,
		tracer:    otel.Tracer("blueprint-auth/service"),
	}
}

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives an organization slug: lowercase, non-alphanumeric runs
// collapsed to single hyphens, leading/trailing hyphens trimmed.
func slugify(name string) string {
	slug := nonAlnumRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Register creates the organization and its first (admin) user, then issues
// tokens and persists the refresh record and session.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client ClientInfo) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.directory.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	orgName := req.OrganizationName
	if orgName == "" {
		orgName = fmt.Sprintf("%s %s's Organization", req.FirstName, req.LastName)
	}
	slug := slugify(req.OrganizationName)
	if slug == "" {
		slug = slugify(req.FirstName + "-" + req.LastName)
	}
	available, err := s.directory.IsSlugAvailable(ctx, slug)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if !available {
		slug = fmt.Sprintf("%s-%d", slug, time.Now().Unix())
	}

	org, err := s.directory.CreateOrganization(ctx, domain.Organization{
		Name:     orgName,
		Slug:     slug,
		Plan:     domain.PlanFree,
		Settings: domain.DefaultOrganizationSettings(),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create organization: %w", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.directory.CreateUser(ctx, domain.User{
		Email:          req.Email,
		PasswordHash:   hashed,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           domain.RoleOrgAdmin,
		OrganizationID: org.ID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	profile := domain.NewUserProfile(user)
	tokens, err := s.issueTokens(ctx, profile, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("organization_id", org.ID),
		zap.String("slug", org.Slug),
	)
	return &AuthResult{
		User:         profile,
		Organization: domain.NewOrganizationProfile(org),
		Tokens:       tokens,
	}, nil
}

// Login authenticates the email/password pair and issues tokens. Unknown
// user, wrong password, and missing/inactive accounts all collapse to
// ErrInvalidCredentials so callers cannot enumerate users.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.directory.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("login for disabled account", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	org, err := s.directory.GetOrganizationByID(ctx, user.OrganizationID)
	if err != nil || !org.IsActive {
		s.logger.Warn("login for missing or inactive organization",
			zap.String("user_id", user.ID),
			zap.String("organization_id", user.OrganizationID),
		)
		return nil, domain.ErrInvalidCredentials
	}

	profile := domain.NewUserProfile(user)
	tokens, err := s.issueTokens(ctx, profile, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return &AuthResult{
		User:         profile,
		Organization: domain.NewOrganizationProfile(org),
		Tokens:       tokens,
	}, nil
}

// Refresh rotates a refresh token: the presented token id becomes unusable
// and a new pair is issued. A verified token absent from the store is
// invalid; that absence is the revocation mechanism.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (token.Pair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return token.Pair{}, err
	}

	if _, ok := s.sessions.ValidateRefreshToken(ctx, claims.ID); !ok {
		return token.Pair{}, domain.ErrInvalidToken
	}

	if s.sessions.WereSessionsClearedAfter(ctx, claims.Subject, claims.IssuedAt.Unix()) {
		return token.Pair{}, domain.ErrSessionInvalidated
	}

	user, err := s.directory.GetUserByID(ctx, claims.Subject)
	if err != nil || !user.IsActive {
		return token.Pair{}, domain.ErrInvalidCredentials
	}
	org, err := s.directory.GetOrganizationByID(ctx, user.OrganizationID)
	if err != nil || !org.IsActive {
		return token.Pair{}, domain.ErrOrganizationNotFound
	}

	profile := domain.NewUserProfile(user)
	tokens, err := s.issueTokens(ctx, profile, client)
	if err != nil {
		return token.Pair{}, err
	}

	s.sessions.InvalidateRefreshToken(ctx, claims.ID)

	s.logger.Info("tokens refreshed", zap.String("user_id", user.ID))
	return tokens, nil
}

// Logout is best effort: it invalidates the refresh token, blacklists the
// access token, and clears the tracked session. It never returns an error;
// logout must always appear to succeed from the client's perspective.
func (s *AuthService) Logout(ctx context.Context, userID, refreshTokenID, accessTokenJTI string) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if refreshTokenID != "" {
		s.sessions.InvalidateRefreshToken(ctx, refreshTokenID)
	}
	if accessTokenJTI != "" {
		s.sessions.BlacklistToken(ctx, accessTokenJTI, time.Now().Add(s.cfg.AccessTokenTTL))
	}
	s.sessions.ClearUserSessions(ctx, userID)

	s.logger.Info("user logged out", zap.String("user_id", userID))
}

// issueTokens generates a pair and persists the refresh record and session.
// Failure to persist either is fatal: the client must not end up holding
// tokens the server cannot later validate or revoke.
func (s *AuthService) issueTokens(ctx context.Context, profile domain.UserProfile, client ClientInfo) (token.Pair, error) {
	tokens, refreshClaims, err := s.codec.GeneratePair(profile)
	if err != nil {
		return token.Pair{}, fmt.Errorf("generate tokens: %w", err)
	}

	refreshTTL := s.cfg.RefreshTokenTTL
	if err := s.sessions.StoreRefreshToken(ctx, refreshClaims.ID, refreshClaims, refreshTTL); err != nil {
		return token.Pair{}, err
	}

	now := time.Now()
	record := domain.SessionRecord{
		UserID:         profile.ID,
		OrganizationID: profile.OrganizationID,
		Email:          profile.Email,
		Role:           profile.Role,
		RefreshTokenID: refreshClaims.ID,
		CreatedAt:      now,
		LastAccessAt:   now,
		ExpiresAt:      now.Add(refreshTTL),
		IPAddress:      client.IPAddress,
		UserAgent:      client.UserAgent,
	}
	if err := s.sessions.StoreSession(ctx, profile.ID, record, refreshTTL); err != nil {
		return token.Pair{}, err
	}

	return tokens, nil
}
