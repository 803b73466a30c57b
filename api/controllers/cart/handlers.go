package cart

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/forkline/storefront/api/middleware"
	"github.com/forkline/storefront/api/responses"
	"github.com/forkline/storefront/api/validators"
	cartsvc "github.com/forkline/storefront/internal/cart"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
)

// CartFetch returns the session cart with its totals.
func CartFetch(svc cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, svc, logg)
		if !ok {
			return
		}

		snapshot, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartAddItem adds a menu item, merging with an existing line for the same item.
func CartAddItem(svc cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, svc, logg)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.AddItem(r.Context(), sessionID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

// CartUpdateItem sets the quantity of a line. Quantities of zero or less remove it.
func CartUpdateItem(svc cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, svc, logg)
		if !ok {
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.UpdateQuantity(r.Context(), sessionID, lineID(r), *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartRemoveItem deletes a line. Unknown lines are ignored.
func CartRemoveItem(svc cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, svc, logg)
		if !ok {
			return
		}

		snapshot, err := svc.RemoveItem(r.Context(), sessionID, lineID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

func CartClear(svc cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, svc, logg)
		if !ok {
			return
		}

		snapshot, err := svc.Clear(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartLocationFetch returns the saved delivery address, or null.
func CartLocationFetch(svc cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, svc, logg)
		if !ok {
			return
		}

		address, found, err := svc.GetLocation(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := locationResponse{}
		if found {
			resp.Address = &address
		}
		responses.WriteSuccess(w, resp)
	}
}

func CartLocationSave(svc cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, svc, logg)
		if !ok {
			return
		}

		var payload locationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetLocation(r.Context(), sessionID, payload.Address); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address := strings.TrimSpace(payload.Address)
		responses.WriteSuccess(w, locationResponse{Address: &address})
	}
}

func requireSession(w http.ResponseWriter, r *http.Request, svc cartsvc.SessionService, logg *logger.Logger) (string, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return "", false
	}
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
		return "", false
	}
	return sessionID, true
}

func lineID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "lineId"))
}
