package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wishboard-backend/api/middleware"
	"github.com/angelmondragon/wishboard-backend/api/responses"
	"github.com/angelmondragon/wishboard-backend/api/validators"
	"github.com/angelmondragon/wishboard-backend/internal/wishboards"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
	"github.com/angelmondragon/wishboard-backend/pkg/logger"
)

// WishboardsList returns every board owned by the caller, newest first.
func WishboardsList(svc wishboards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishboards service unavailable"))
			return
		}

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage))
			return
		}

		boards, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, boards)
	}
}

// WishboardsCreate stores a new board with its images.
func WishboardsCreate(svc wishboards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishboards service unavailable"))
			return
		}

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage))
			return
		}

		var body wishboards.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		board, err := svc.Create(ctx, userID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, board)
	}
}

// WishboardsGet returns a board. Non-owners receive the redacted view.
func WishboardsGet(svc wishboards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishboards service unavailable"))
			return
		}

		var requester *uuid.UUID
		if userID, ok := middleware.UserIDFromContext(ctx); ok {
			requester = &userID
		}

		board, err := svc.Get(ctx, chi.URLParam(r, "id"), requester)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, board)
	}
}

// WishboardsUpdate renames a board and/or replaces its images.
func WishboardsUpdate(svc wishboards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishboards service unavailable"))
			return
		}

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage))
			return
		}

		var body wishboards.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		board, err := svc.Update(ctx, chi.URLParam(r, "id"), userID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, board)
	}
}

// WishboardsDelete removes a board and all of its images.
func WishboardsDelete(svc wishboards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishboards service unavailable"))
			return
		}

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage))
			return
		}

		if err := svc.Delete(ctx, chi.URLParam(r, "id"), userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteOK(w)
	}
}
