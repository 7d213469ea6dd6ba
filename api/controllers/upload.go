package controllers

import (
	"errors"
	"net/http"

	"github.com/angelmondragon/wishboard-backend/api/middleware"
	"github.com/angelmondragon/wishboard-backend/api/responses"
	"github.com/angelmondragon/wishboard-backend/internal/uploads"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
	"github.com/angelmondragon/wishboard-backend/pkg/logger"
)

const (
	uploadFormField = "file"
	// multipart framing allowance on top of the file itself
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

// Upload accepts a multipart image under the "file" field and stores it.
func Upload(svc uploads.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "File too large").
					WithDetails(map[string]any{"maxBytes": maxBytes}))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "No file provided"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "No file provided"))
			return
		}
		defer file.Close()

		result, err := svc.Upload(ctx, uploads.Input{
			Filename: header.Filename,
			Body:     file,
			Size:     header.Size,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
