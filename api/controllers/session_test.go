package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/wishboard-backend/api/middleware"
	"github.com/angelmondragon/wishboard-backend/pkg/auth"
	"github.com/angelmondragon/wishboard-backend/pkg/auth/session"
	"github.com/angelmondragon/wishboard-backend/pkg/config"
)

var testJWTConfig = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}

type stubSessionTokenManager struct {
	lastRevoked    string
	lastRotateOld  string
	lastRotateBody string
	rotateRespID   string
	rotateRespTok  string
	rotateErr      error
	revokeErr      error
}

func (s *stubSessionTokenManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.lastRotateOld = oldAccessID
	s.lastRotateBody = provided
	return s.rotateRespID, s.rotateRespTok, s.rotateErr
}

func (s *stubSessionTokenManager) Revoke(ctx context.Context, accessID string) error {
	s.lastRevoked = accessID
	return s.revokeErr
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, at time.Time) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(cfg, at, auth.AccessTokenPayload{
		UserID: userID,
		Email:  "sam@example.com",
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, accessID
}

func TestAuthLogout(t *testing.T) {
	manager := &stubSessionTokenManager{}
	handler := AuthLogout(manager, testJWTConfig, nil)

	token, jti := mintTestToken(t, testJWTConfig, uuid.New(), time.Now())
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if manager.lastRevoked != jti {
		t.Fatalf("expected revoked %s got %s", jti, manager.lastRevoked)
	}
	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || !body.Success {
		t.Fatalf("expected success body, err=%v", err)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	manager := &stubSessionTokenManager{}
	handler := AuthLogout(manager, testJWTConfig, nil)

	token, jti := mintTestToken(t, testJWTConfig, uuid.New(), time.Now().Add(-time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if manager.lastRevoked != jti {
		t.Fatalf("expected revoked %s got %s", jti, manager.lastRevoked)
	}
}

func TestAuthLogoutRequiresBearer(t *testing.T) {
	manager := &stubSessionTokenManager{}
	rec := httptest.NewRecorder()
	AuthLogout(manager, testJWTConfig, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if manager.lastRevoked != "" {
		t.Fatalf("nothing should be revoked")
	}
}

func TestAuthLogoutRevokeFailure(t *testing.T) {
	manager := &stubSessionTokenManager{revokeErr: errors.New("redis down")}
	token, _ := mintTestToken(t, testJWTConfig, uuid.New(), time.Now())
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthLogout(manager, testJWTConfig, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestAuthRefresh(t *testing.T) {
	manager := &stubSessionTokenManager{
		rotateRespID:  "new-jti",
		rotateRespTok: "new-refresh",
	}
	handler := AuthRefresh(manager, testJWTConfig, nil)

	userID := uuid.New()
	token, jti := mintTestToken(t, testJWTConfig, userID, time.Now().Add(-time.Hour))
	body := `{"refreshToken":"old-refresh"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if manager.lastRotateOld != jti || manager.lastRotateBody != "old-refresh" {
		t.Fatalf("unexpected rotate args %s / %s", manager.lastRotateOld, manager.lastRotateBody)
	}
	var resp refreshResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RefreshToken != "new-refresh" {
		t.Fatalf("expected refresh token new-refresh got %s", resp.RefreshToken)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected access token in body")
	}
	if rec.Header().Get(middleware.TokenHeader) != resp.AccessToken {
		t.Fatalf("expected header token match body token")
	}

	claims, err := auth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != userID || claims.ID != "new-jti" {
		t.Fatalf("unexpected claims user=%s jti=%s", claims.UserID, claims.ID)
	}
}

func TestAuthRefreshInvalidToken(t *testing.T) {
	manager := &stubSessionTokenManager{
		rotateErr: session.ErrInvalidRefreshToken,
	}
	handler := AuthRefresh(manager, testJWTConfig, nil)

	token, _ := mintTestToken(t, testJWTConfig, uuid.New(), time.Now())
	body := `{"refreshToken":"old-refresh"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshRequiresBody(t *testing.T) {
	manager := &stubSessionTokenManager{}
	token, _ := mintTestToken(t, testJWTConfig, uuid.New(), time.Now())
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthRefresh(manager, testJWTConfig, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if manager.lastRotateOld != "" {
		t.Fatalf("rotate should not be called")
	}
}
