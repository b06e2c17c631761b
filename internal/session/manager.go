// Package session orchestrates the backing store into session, refresh-token,
// blacklist, and clear-marker semantics.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Baragji/Blueprint-creator/internal/domain"
	"github.com/Baragji/Blueprint-creator/internal/store"
	"github.com/Baragji/Blueprint-creator/internal/token"
)

// Key namespaces share one store instance across concerns without collision.
const (
	prefixSession   = "session:"
	prefixRefresh   = "refresh:"
	prefixBlacklist = "blacklist:"
	prefixCleared   = "cleared:"
)

// clearMarkerGrace is added to the refresh TTL when writing clear markers, so
// a marker always outlives every refresh token issued before the clear.
const clearMarkerGrace = 24 * time.Hour

// Manager implements session tracking on top of the pluggable store. Reads
// for security checks degrade conservatively on store errors (blacklist fails
// open, refresh lookup fails closed); writes for new sessions and refresh
// tokens are fatal, since the client would otherwise hold tokens the server
// can never validate or revoke.
type Manager struct {
	store      store.Store
	logger     *zap.Logger
	refreshTTL time.Duration
}

// NewManager returns a Manager. refreshTTL is the maximum refresh-token
// lifetime and bounds the clear-marker TTL.
func NewManager(st store.Store, refreshTTL time.Duration, logger *zap.Logger) *Manager {
	return &Manager{store: st, logger: logger, refreshTTL: refreshTTL}
}

// StoreSession writes the user's session record, overwriting any previous
// one. A user has at most one tracked session.
func (m *Manager) StoreSession(ctx context.Context, userID string, record domain.SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSessionStorage, err)
	}
	if err := m.store.Set(ctx, prefixSession+userID, string(data), ttl); err != nil {
		m.logger.Error("failed to store session", zap.String("user_id", userID), zap.Error(err))
		return domain.ErrSessionStorage
	}
	return nil
}

// GetSession reads the user's session record. Absent and store-error both
// read as no session.
func (m *Manager) GetSession(ctx context.Context, userID string) (*domain.SessionRecord, bool) {
	data, ok, err := m.store.Get(ctx, prefixSession+userID)
	if err != nil {
		m.logger.Warn("failed to read session", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var record domain.SessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		m.logger.Warn("corrupt session record", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return &record, true
}

// StoreRefreshToken persists the refresh claims under the token id.
func (m *Manager) StoreRefreshToken(ctx context.Context, tokenID string, claims *token.RefreshClaims, ttl time.Duration) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSessionStorage, err)
	}
	if err := m.store.Set(ctx, prefixRefresh+tokenID, string(data), ttl); err != nil {
		m.logger.Error("failed to store refresh token", zap.String("token_id", tokenID), zap.Error(err))
		return domain.ErrSessionStorage
	}
	return nil
}

// ValidateRefreshToken looks the token id up in the store. Store errors read
// as absent: a token whose presence cannot be confirmed is not valid.
func (m *Manager) ValidateRefreshToken(ctx context.Context, tokenID string) (*token.RefreshClaims, bool) {
	data, ok, err := m.store.Get(ctx, prefixRefresh+tokenID)
	if err != nil {
		m.logger.Warn("failed to validate refresh token", zap.String("token_id", tokenID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var claims token.RefreshClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		m.logger.Warn("corrupt refresh token record", zap.String("token_id", tokenID), zap.Error(err))
		return nil, false
	}
	return &claims, true
}

// InvalidateRefreshToken deletes the token id record. Best effort; errors are
// logged, not returned.
func (m *Manager) InvalidateRefreshToken(ctx context.Context, tokenID string) {
	if err := m.store.Delete(ctx, prefixRefresh+tokenID); err != nil {
		m.logger.Warn("failed to invalidate refresh token", zap.String("token_id", tokenID), zap.Error(err))
	}
}

// BlacklistToken marks an access token id revoked until its natural expiry.
// Already-expired tokens are a no-op.
func (m *Manager) BlacklistToken(ctx context.Context, jti string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := m.store.Set(ctx, prefixBlacklist+jti, "1", ttl); err != nil {
		m.logger.Warn("failed to blacklist token", zap.String("jti", jti), zap.Error(err))
	}
}

// IsBlacklisted reports whether the access token id was revoked. Fails open:
// a store error reads as not blacklisted, because the refresh-token store
// check is the primary revocation mechanism and availability wins here.
func (m *Manager) IsBlacklisted(ctx context.Context, jti string) bool {
	exists, err := m.store.Exists(ctx, prefixBlacklist+jti)
	if err != nil {
		m.logger.Warn("failed to check blacklist", zap.String("jti", jti), zap.Error(err))
		return false
	}
	return exists
}

// ClearUserSessions deletes the tracked session and writes a clear marker.
// Refresh tokens issued before the marker are rejected on their next use even
// though their store records still exist.
func (m *Manager) ClearUserSessions(ctx context.Context, userID string) {
	if err := m.store.Delete(ctx, prefixSession+userID); err != nil {
		m.logger.Warn("failed to delete session", zap.String("user_id", userID), zap.Error(err))
	}

	marker := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := m.store.Set(ctx, prefixCleared+userID, marker, m.refreshTTL+clearMarkerGrace); err != nil {
		m.logger.Warn("failed to write clear marker", zap.String("user_id", userID), zap.Error(err))
	}
}

// WereSessionsClearedAfter reports whether a clear marker exists for the user
// with a timestamp strictly after the given issued-at (unix seconds). Fails
// closed to false on store error.
func (m *Manager) WereSessionsClearedAfter(ctx context.Context, userID string, issuedAt int64) bool {
	data, ok, err := m.store.Get(ctx, prefixCleared+userID)
	if err != nil {
		m.logger.Warn("failed to check clear marker", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	clearedMilli, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return false
	}
	return clearedMilli > issuedAt*1000
}

// HealthCheck verifies the store with a set/get roundtrip.
func (m *Manager) HealthCheck(ctx context.Context) error {
	const key = "health_check"
	if err := m.store.Set(ctx, key, "1", 10*time.Second); err != nil {
		return err
	}
	value, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || value != "1" {
		return fmt.Errorf("health check roundtrip mismatch")
	}
	return nil
}
