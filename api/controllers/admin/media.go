package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/forkline/storefront/api/responses"
	"github.com/forkline/storefront/api/validators"
	"github.com/forkline/storefront/internal/media"
	"github.com/forkline/storefront/pkg/enums"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
)

const (
	multipartOverhead = 1 << 20
	uploadFormField   = "file"
)

// ImageUpload proxies a multipart image to the image host. The form carries
// the file and a kind of "restaurant" or "menu_item".
func ImageUpload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotConfigured, "image uploads are not configured"))
			return
		}

		limit := svc.MaxUploadBytes() + multipartOverhead
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "upload too large"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		kind, err := enums.ParseMediaKind(validators.SanitizeString(r.FormValue("kind"), 32))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind"))
			return
		}

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer func() { _ = file.Close() }()

		out, err := svc.Upload(r.Context(), media.UploadInput{
			Kind:      kind,
			FileName:  header.Filename,
			MimeType:  strings.TrimSpace(header.Header.Get("Content-Type")),
			SizeBytes: header.Size,
			File:      file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// ImageDelete removes a hosted image by public id, passed as ?public_id=.
func ImageDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotConfigured, "image uploads are not configured"))
			return
		}

		if err := svc.Delete(r.Context(), r.URL.Query().Get("public_id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
