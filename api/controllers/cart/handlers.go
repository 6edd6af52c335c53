// Package cart serves the cart, cart item and cart coupon endpoints for both
// anonymous and signed-in shoppers.
package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartdto "github.com/angelmondragon/storefront-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type cartPricer interface {
	Price(ctx context.Context, cart *models.Cart) (*pricing.Result, error)
	ResolveCartPricing(ctx context.Context, cartID uuid.UUID) (*pricing.Result, error)
}

// Deps wires the cart handlers.
type Deps struct {
	Carts   cartsvc.Service
	Coupons coupons.Service
	Pricing cartPricer
	Cookie  config.CartConfig
	Logger  *logger.Logger
}

// Get resolves the caller's cart and returns it with pricing.
func Get(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := resolve(w, r, deps)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		writeCart(w, r, deps, res.Cart)
	}
}

// Pricing returns only the pricing breakdown of the caller's cart.
func Pricing(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := resolve(w, r, deps)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		result, err := deps.Pricing.ResolveCartPricing(r.Context(), res.Cart.ID)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AddItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		res, err := resolve(w, r, deps)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		updated, err := deps.Carts.AddItem(r.Context(), res.Cart.ID, cartsvc.AddItemInput{
			VariantID: payload.VariantID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		writeCart(w, r, deps, updated)
	}
}

func UpdateItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		var payload cartdto.UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		res, err := resolve(w, r, deps)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		updated, err := deps.Carts.UpdateItemQuantity(r.Context(), res.Cart.ID, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		writeCart(w, r, deps, updated)
	}
}

func RemoveItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		res, err := resolve(w, r, deps)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		updated, err := deps.Carts.RemoveItem(r.Context(), res.Cart.ID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		writeCart(w, r, deps, updated)
	}
}

// ApplyCoupon attaches a coupon code to the caller's cart.
func ApplyCoupon(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartdto.ApplyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		res, err := resolve(w, r, deps)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		updated, err := deps.Coupons.ApplyToCart(r.Context(), res.Cart.ID, validators.SanitizeCode(payload.Code), enums.CouponSourceCart)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		writeCart(w, r, deps, updated)
	}
}

func RemoveCoupon(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := resolve(w, r, deps)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		updated, err := deps.Coupons.RemoveFromCart(r.Context(), res.Cart.ID)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logger, w, err)
			return
		}
		writeCart(w, r, deps, updated)
	}
}

func writeCart(w http.ResponseWriter, r *http.Request, deps Deps, c *models.Cart) {
	priced, err := deps.Pricing.Price(r.Context(), c)
	if err != nil {
		responses.WriteError(r.Context(), deps.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, cartdto.CartResponse{Cart: cartdto.NewCart(c), Pricing: priced})
}

func optionalUser(r *http.Request) *uuid.UUID {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	return &id
}

func lineIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "lineId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item id")
	}
	return id, nil
}
