package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/wishboard-backend/api/middleware"
	"github.com/angelmondragon/wishboard-backend/internal/auth"
	"github.com/angelmondragon/wishboard-backend/internal/users"
	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
)

type stubAuthService struct {
	lastReq auth.GoogleSignInRequest
	resp    *auth.SessionResponse
	err     error
}

func (s *stubAuthService) SignInWithGoogle(_ context.Context, req auth.GoogleSignInRequest) (*auth.SessionResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

type stubUsersService struct {
	user *users.UserDTO
	err  error
	last uuid.UUID
}

func (s *stubUsersService) UpsertFromIdentity(context.Context, users.Identity) (*models.User, error) {
	return nil, nil
}

func (s *stubUsersService) Get(_ context.Context, id uuid.UUID) (*users.UserDTO, error) {
	s.last = id
	return s.user, s.err
}

func TestAuthGoogleSetsTokenHeader(t *testing.T) {
	svc := &stubAuthService{resp: &auth.SessionResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &users.UserDTO{ID: uuid.New(), Email: "sam@example.com"},
	}}
	req := httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewBufferString(`{"idToken":"google-token"}`))
	rec := httptest.NewRecorder()
	AuthGoogle(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastReq.IDToken != "google-token" {
		t.Fatalf("expected id token forwarded, got %q", svc.lastReq.IDToken)
	}
	if rec.Header().Get(middleware.TokenHeader) != "access" {
		t.Fatalf("expected token header, got %q", rec.Header().Get(middleware.TokenHeader))
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["accessToken"] != "access" || body["refreshToken"] != "refresh" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAuthGoogleValidatesBody(t *testing.T) {
	svc := &stubAuthService{}
	for _, payload := range []string{`{}`, `{"idToken":"x","extra":1}`, ``} {
		rec := httptest.NewRecorder()
		AuthGoogle(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewBufferString(payload)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400 got %d", payload, rec.Code)
		}
	}
}

func TestAuthGooglePropagatesUnauthorized(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")}
	rec := httptest.NewRecorder()
	AuthGoogle(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewBufferString(`{"idToken":"bad"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthMe(t *testing.T) {
	userID := uuid.New()
	svc := &stubUsersService{user: &users.UserDTO{ID: userID, Email: "sam@example.com"}}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	AuthMe(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.last != userID {
		t.Fatalf("expected lookup for %s got %s", userID, svc.last)
	}
	var body users.UserDTO
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Email != "sam@example.com" {
		t.Fatalf("unexpected user %+v", body)
	}
}

func TestAuthMeRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthMe(&stubUsersService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
