package admin

import (
	"net/http"

	"github.com/forkline/storefront/api/responses"
	"github.com/forkline/storefront/api/validators"
	"github.com/forkline/storefront/internal/delivery"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
)

// DeliveryRequests pages through the delivery audit log, newest first.
func DeliveryRequests(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListRequests(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"requests":    list.Requests,
			"next_cursor": list.NextCursor,
			"providers":   svc.Providers(),
		})
	}
}
