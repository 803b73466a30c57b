package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/forkline/storefront/api/responses"
	"github.com/forkline/storefront/internal/cart"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
)

// CartSessionHeader carries the anonymous cart session between requests.
const CartSessionHeader = "X-Cart-Session"

// CartSession resolves the cart session from the request header, minting a
// new one when absent. The resolved id is always echoed back.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if sessionID == "" {
				sessionID = strings.ReplaceAll(uuid.NewString(), "-", "")
			} else if !cart.ValidSessionID(sessionID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session").
					WithDetails(map[string]any{"header": CartSessionHeader}))
				return
			}

			w.Header().Set(CartSessionHeader, sessionID)
			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
