package cart

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/config"
)

// resolve finds the cart for the caller and applies any cookie change the
// resolution asks for. It must run before the response body is written.
func resolve(w http.ResponseWriter, r *http.Request, deps Deps) (*cartsvc.Resolution, error) {
	ctx := r.Context()
	res, err := deps.Carts.ResolveCart(ctx, optionalUser(r), middleware.CartSessionFromContext(ctx))
	if err != nil {
		return nil, err
	}
	switch {
	case res.NewSessionID != "":
		http.SetCookie(w, sessionCookie(deps.Cookie, res.NewSessionID, int(deps.Cookie.SessionCookieTTL.Seconds())))
	case res.ClearSessionCookie:
		http.SetCookie(w, sessionCookie(deps.Cookie, "", -1))
	}
	if deps.Logger != nil && res.Merged {
		deps.Logger.Info(deps.Logger.WithCartID(ctx, res.Cart.ID.String()), "cart.session_merged")
	}
	return res, nil
}

func sessionCookie(cfg config.CartConfig, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
