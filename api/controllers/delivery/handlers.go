package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forkline/storefront/api/middleware"
	"github.com/forkline/storefront/api/responses"
	"github.com/forkline/storefront/api/validators"
	cartsvc "github.com/forkline/storefront/internal/cart"
	deliverysvc "github.com/forkline/storefront/internal/delivery"
	"github.com/forkline/storefront/pkg/enums"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
)

// DeliveryQuotes prices delivery of the session cart with every configured
// provider. The dropoff address defaults to the saved cart location.
func DeliveryQuotes(svc deliverysvc.Service, carts cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		sessionID := middleware.CartSessionFromContext(r.Context())

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, _, err := carts.GetLocation(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot, err := carts.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		_, value := cartManifest(snapshot.Lines, payload.RestaurantID)

		result, err := svc.Quotes(r.Context(), deliverysvc.QuoteInput{
			RestaurantID: payload.RestaurantID,
			Dropoff:      payload.Dropoff.toContact(location),
			OrderValue:   value,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DeliveryDispatch books a courier for the cart lines of one restaurant.
func DeliveryDispatch(svc deliverysvc.Service, carts cartsvc.SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		sessionID := middleware.CartSessionFromContext(r.Context())

		var payload dispatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		provider, err := enums.ParseDeliveryProvider(payload.Provider)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid provider"))
			return
		}

		snapshot, err := carts.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, value := cartManifest(snapshot.Lines, payload.RestaurantID)
		if len(items) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart has no items from this restaurant"))
			return
		}
		location, _, err := carts.GetLocation(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.Dispatch(r.Context(), deliverysvc.DispatchInput{
			Provider:     provider,
			RestaurantID: payload.RestaurantID,
			QuoteID:      payload.QuoteID,
			Dropoff:      payload.Dropoff.toContact(location),
			Items:        items,
			OrderValue:   value,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

// DeliveryStatus fetches the live state of a dispatched delivery.
func DeliveryStatus(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		provider, err := enums.ParseDeliveryProvider(chi.URLParam(r, "provider"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid provider"))
			return
		}

		delivery, err := svc.Status(r.Context(), provider, chi.URLParam(r, "externalId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, delivery)
	}
}
