package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wishboard-backend/api/middleware"
	"github.com/angelmondragon/wishboard-backend/internal/wishboards"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
)

type stubWishboardsService struct {
	board     *wishboards.WishboardDTO
	boards    []wishboards.WishboardDTO
	err       error
	lastID    string
	lastUser  uuid.UUID
	requester *uuid.UUID
	create    wishboards.CreateRequest
	update    wishboards.UpdateRequest
	deleted   bool
}

func (s *stubWishboardsService) List(_ context.Context, requesterID uuid.UUID) ([]wishboards.WishboardDTO, error) {
	s.lastUser = requesterID
	return s.boards, s.err
}

func (s *stubWishboardsService) Create(_ context.Context, requesterID uuid.UUID, req wishboards.CreateRequest) (*wishboards.WishboardDTO, error) {
	s.lastUser = requesterID
	s.create = req
	return s.board, s.err
}

func (s *stubWishboardsService) Get(_ context.Context, id string, requesterID *uuid.UUID) (*wishboards.WishboardDTO, error) {
	s.lastID = id
	s.requester = requesterID
	return s.board, s.err
}

func (s *stubWishboardsService) Update(_ context.Context, id string, requesterID uuid.UUID, req wishboards.UpdateRequest) (*wishboards.WishboardDTO, error) {
	s.lastID = id
	s.lastUser = requesterID
	s.update = req
	return s.board, s.err
}

func (s *stubWishboardsService) Delete(_ context.Context, id string, requesterID uuid.UUID) error {
	s.lastID = id
	s.lastUser = requesterID
	s.deleted = s.err == nil
	return s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestWishboardsCreateForwardsBody(t *testing.T) {
	userID := uuid.New()
	svc := &stubWishboardsService{board: &wishboards.WishboardDTO{ID: uuid.New(), Name: "Sam's 30th", UserID: &userID}}
	req := asUser(httptest.NewRequest(http.MethodPost, "/wishboards", bytes.NewBufferString(
		`{"name":"Sam's 30th","images":[{"url":"/u/a.png","caption":"hat"},{"url":"/u/b.png"}]}`)), userID)
	rec := httptest.NewRecorder()
	WishboardsCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUser != userID {
		t.Fatalf("expected requester %s got %s", userID, svc.lastUser)
	}
	if len(svc.create.Images) != 2 || svc.create.Images[0].Caption == nil || *svc.create.Images[0].Caption != "hat" {
		t.Fatalf("unexpected images %+v", svc.create.Images)
	}
}

func TestWishboardsCreateRejectsMissingImages(t *testing.T) {
	userID := uuid.New()
	svc := &stubWishboardsService{}
	for _, payload := range []string{`{"name":"x"}`, `{"images":[{"caption":"no url"}]}`, `{"images":[],"owner":"me"}`} {
		req := asUser(httptest.NewRequest(http.MethodPost, "/wishboards", bytes.NewBufferString(payload)), userID)
		rec := httptest.NewRecorder()
		WishboardsCreate(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", payload, rec.Code)
		}
	}
	if svc.lastUser != uuid.Nil {
		t.Fatal("service should not be called for invalid bodies")
	}
}

func TestWishboardsRequireIdentity(t *testing.T) {
	svc := &stubWishboardsService{}
	handlers := map[string]http.HandlerFunc{
		"list":   WishboardsList(svc, nil),
		"create": WishboardsCreate(svc, nil),
		"update": WishboardsUpdate(svc, nil),
		"delete": WishboardsDelete(svc, nil),
	}
	for name, h := range handlers {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/wishboards", bytes.NewBufferString(`{"images":[]}`)))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", name, rec.Code)
		}
	}
}

func TestWishboardsGetAnonymous(t *testing.T) {
	svc := &stubWishboardsService{board: &wishboards.WishboardDTO{ID: uuid.New(), Name: "Public", Images: []wishboards.ImageDTO{}}}
	id := uuid.NewString()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/wishboards/"+id, nil), "id", id)
	rec := httptest.NewRecorder()
	WishboardsGet(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastID != id || svc.requester != nil {
		t.Fatalf("unexpected call id=%q requester=%v", svc.lastID, svc.requester)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["userId"]; ok {
		t.Fatalf("public view leaked owner: %v", body)
	}
}

func TestWishboardsGetPassesRequester(t *testing.T) {
	userID := uuid.New()
	svc := &stubWishboardsService{board: &wishboards.WishboardDTO{ID: uuid.New(), UserID: &userID}}
	req := asUser(withURLParam(httptest.NewRequest(http.MethodGet, "/wishboards/x", nil), "id", "x"), userID)
	rec := httptest.NewRecorder()
	WishboardsGet(svc, nil).ServeHTTP(rec, req)

	if svc.requester == nil || *svc.requester != userID {
		t.Fatalf("expected requester %s, got %v", userID, svc.requester)
	}
}

func TestWishboardsGetNotFound(t *testing.T) {
	svc := &stubWishboardsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Wishboard not found")}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/wishboards/x", nil), "id", "x")
	rec := httptest.NewRecorder()
	WishboardsGet(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" || body.Error.Message != "Wishboard not found" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestWishboardsUpdateDistinguishesAbsentImages(t *testing.T) {
	userID := uuid.New()
	svc := &stubWishboardsService{board: &wishboards.WishboardDTO{}}

	req := asUser(withURLParam(httptest.NewRequest(http.MethodPatch, "/wishboards/x", bytes.NewBufferString(`{"name":"New"}`)), "id", "x"), userID)
	WishboardsUpdate(svc, nil).ServeHTTP(httptest.NewRecorder(), req)
	if svc.update.Images != nil {
		t.Fatal("absent images should stay nil")
	}
	if svc.update.Name == nil || *svc.update.Name != "New" {
		t.Fatalf("unexpected name %v", svc.update.Name)
	}

	req = asUser(withURLParam(httptest.NewRequest(http.MethodPatch, "/wishboards/x", bytes.NewBufferString(`{"images":[]}`)), "id", "x"), userID)
	rec := httptest.NewRecorder()
	WishboardsUpdate(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.update.Images == nil || len(*svc.update.Images) != 0 {
		t.Fatalf("expected explicit empty image list, got %v", svc.update.Images)
	}
}

func TestWishboardsUpdateNonOwner(t *testing.T) {
	svc := &stubWishboardsService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")}
	req := asUser(withURLParam(httptest.NewRequest(http.MethodPatch, "/wishboards/x", bytes.NewBufferString(`{}`)), "id", "x"), uuid.New())
	rec := httptest.NewRecorder()
	WishboardsUpdate(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestWishboardsDeleteReturnsSuccessFlag(t *testing.T) {
	userID := uuid.New()
	svc := &stubWishboardsService{}
	req := asUser(withURLParam(httptest.NewRequest(http.MethodDelete, "/wishboards/abc", nil), "id", "abc"), userID)
	rec := httptest.NewRecorder()
	WishboardsDelete(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !svc.deleted || svc.lastID != "abc" || svc.lastUser != userID {
		t.Fatalf("unexpected delete call %+v", svc)
	}
	if got := rec.Body.String(); got != "{\"success\":true}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestWishboardsListInternalErrorHidesCause(t *testing.T) {
	svc := &stubWishboardsService{err: pkgerrors.Wrap(pkgerrors.CodeInternal, context.DeadlineExceeded, "list wishboards")}
	req := asUser(httptest.NewRequest(http.MethodGet, "/wishboards", nil), uuid.New())
	rec := httptest.NewRecorder()
	WishboardsList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("deadline")) {
		t.Fatalf("internal cause leaked: %s", rec.Body.String())
	}
}
