package controllers

import (
	"net/http"

	"github.com/angelmondragon/wishboard-backend/api/middleware"
	"github.com/angelmondragon/wishboard-backend/api/responses"
	"github.com/angelmondragon/wishboard-backend/api/validators"
	"github.com/angelmondragon/wishboard-backend/internal/auth"
	"github.com/angelmondragon/wishboard-backend/internal/users"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
	"github.com/angelmondragon/wishboard-backend/pkg/logger"
)

const unauthorizedMessage = "Unauthorized"

// AuthGoogle exchanges a Google ID token for a session.
func AuthGoogle(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.GoogleSignInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SignInWithGoogle(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(middleware.TokenHeader, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthMe returns the authenticated user.
func AuthMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage))
			return
		}

		user, err := svc.Get(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
