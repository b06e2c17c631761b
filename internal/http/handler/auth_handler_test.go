package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Baragji/Blueprint-creator/internal/config"
	"github.com/Baragji/Blueprint-creator/internal/domain"
	httptransport "github.com/Baragji/Blueprint-creator/internal/http"
	"github.com/Baragji/Blueprint-creator/internal/http/handler"
	httpmiddleware "github.com/Baragji/Blueprint-creator/internal/http/middleware"
	"github.com/Baragji/Blueprint-creator/internal/password"
	"github.com/Baragji/Blueprint-creator/internal/repository"
	"github.com/Baragji/Blueprint-creator/internal/service"
	"github.com/Baragji/Blueprint-creator/internal/session"
	"github.com/Baragji/Blueprint-creator/internal/store"
	"github.com/Baragji/Blueprint-creator/internal/token"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		ServiceName:     "blueprint-auth",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      4,
		RateLimitWindow: time.Minute,
		RateLimitMax:    1000,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type"},
		CORSAllowedOrigins: []string{"*"},
	}

	codec, err := token.NewCodec(token.Config{
		Secret:     []byte("test-secret-test-secret-test-secr"),
		Issuer:     "blueprint-api",
		Audience:   "blueprint-clients",
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	st := store.NewMemoryStore()
	hasher := password.NewHasher(cfg.BcryptCost)
	directory := newFakeDirectory(hasher)
	sessions := session.NewManager(st, cfg.RefreshTokenTTL, logger)
	svc := service.NewAuthService(directory, codec, sessions, hasher, cfg, logger)

	authHandler := handler.NewAuthHandler(svc, codec)
	healthHandler := handler.NewHealthHandler(directory, sessions)
	auth := &httpmiddleware.Auth{Codec: codec, Sessions: sessions}

	return httptransport.NewRouter(cfg, logger, authHandler, healthHandler, auth, st)
}

func postJSON(r *gin.Engine, path string, body any, authHeader string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerBody() map[string]string {
	return map[string]string{
		"email":            "founder@acme.test",
		"password":         "Str0ng!pass",
		"firstName":        "Grace",
		"lastName":         "Hopper",
		"organizationName": "Acme Inc",
	}
}

type authResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Organization struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	} `json:"organization"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func TestRegisterEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/register", registerBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "founder@acme.test", resp.User.Email)
	require.Equal(t, string(domain.RoleOrgAdmin), resp.User.Role)
	require.Equal(t, "acme-inc", resp.Organization.Slug)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusCreated, postJSON(r, "/api/auth/register", registerBody(), "").Code)

	w := postJSON(r, "/api/auth/register", registerBody(), "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "USER_ALREADY_EXISTS")
}

func TestRegisterEndpointInvalidInput(t *testing.T) {
	r := newTestRouter(t)

	body := registerBody()
	body["password"] = "weak"
	w := postJSON(r, "/api/auth/register", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "WEAK_PASSWORD")

	body = registerBody()
	body["email"] = "not-an-email"
	w = postJSON(r, "/api/auth/register", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_EMAIL")
}

func TestLoginEndpoint(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, postJSON(r, "/api/auth/register", registerBody(), "").Code)

	w := postJSON(r, "/api/auth/login", map[string]string{
		"email":    "founder@acme.test",
		"password": "Str0ng!pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = postJSON(r, "/api/auth/login", map[string]string{
		"email":    "founder@acme.test",
		"password": "Wr0ng!pass!",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestRefreshEndpointRotates(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/register", registerBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var registered authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	w = postJSON(r, "/api/auth/refresh", map[string]string{"refreshToken": registered.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.Token)
	require.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// Replaying the rotated-out token fails.
	w = postJSON(r, "/api/auth/refresh", map[string]string{"refreshToken": registered.RefreshToken}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestRefreshEndpointMissingToken(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/refresh", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestLogoutEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/register", registerBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var registered authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	w = postJSON(r, "/api/auth/logout", map[string]string{"refreshToken": registered.RefreshToken}, "Bearer "+registered.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"success":true`)

	// The refresh token no longer works.
	w = postJSON(r, "/api/auth/refresh", map[string]string{"refreshToken": registered.RefreshToken}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Neither does the blacklisted access token.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Logout with no credentials at all still reports success.
func TestLogoutEndpointAnonymous(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/logout", map[string]string{}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"success":true`)
}

func TestMeEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/register", registerBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var registered authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "founder@acme.test")

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "healthy")
}

type fakeDirectory struct {
	hasher *password.Hasher
	users  map[string]domain.User
	orgs   map[string]domain.Organization
	nextID int
}

var _ repository.Directory = (*fakeDirectory)(nil)

func newFakeDirectory(hasher *password.Hasher) *fakeDirectory {
	return &fakeDirectory{
		hasher: hasher,
		users:  make(map[string]domain.User),
		orgs:   make(map[string]domain.Organization),
	}
}

func (d *fakeDirectory) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	d.nextID++
	user.ID = fmt.Sprintf("user-%d", d.nextID)
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	d.users[user.ID] = user
	return user, nil
}

func (d *fakeDirectory) GetUserByID(_ context.Context, id string) (domain.User, error) {
	user, ok := d.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (d *fakeDirectory) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	for _, user := range d.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (d *fakeDirectory) Authenticate(ctx context.Context, email, passwd string) (domain.User, error) {
	user, err := d.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if !d.hasher.Verify(passwd, user.PasswordHash) {
		return domain.User{}, repository.ErrInvalidPassword
	}
	return user, nil
}

func (d *fakeDirectory) CreateOrganization(_ context.Context, org domain.Organization) (domain.Organization, error) {
	d.nextID++
	org.ID = fmt.Sprintf("org-%d", d.nextID)
	org.IsActive = true
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	d.orgs[org.ID] = org
	return org, nil
}

func (d *fakeDirectory) GetOrganizationByID(_ context.Context, id string) (domain.Organization, error) {
	org, ok := d.orgs[id]
	if !ok {
		return domain.Organization{}, repository.ErrNotFound
	}
	return org, nil
}

func (d *fakeDirectory) IsSlugAvailable(_ context.Context, slug string) (bool, error) {
	for _, org := range d.orgs {
		if org.Slug == slug {
			return false, nil
		}
	}
	return true, nil
}

func (d *fakeDirectory) Ping(context.Context) error { return nil }
