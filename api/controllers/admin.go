package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type discountRequest struct {
	Name          string              `json:"name" validate:"required,max=200"`
	Scope         enums.DiscountScope `json:"scope" validate:"required"`
	DiscountType  enums.DiscountType  `json:"discount_type" validate:"required"`
	DiscountValue int64               `json:"discount_value" validate:"required,min=1"`
	Priority      int                 `json:"priority"`
	IsStackable   bool                `json:"is_stackable"`
	IsActive      bool                `json:"is_active"`
	StartDate     time.Time           `json:"start_date" validate:"required"`
	EndDate       time.Time           `json:"end_date" validate:"required"`
	TargetIDs     []uuid.UUID         `json:"target_ids"`
}

func (r discountRequest) input() discounts.Input {
	return discounts.Input{
		Name:        r.Name,
		Scope:       r.Scope,
		Type:        r.DiscountType,
		Value:       r.DiscountValue,
		Priority:    r.Priority,
		IsStackable: r.IsStackable,
		IsActive:    r.IsActive,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		TargetIDs:   r.TargetIDs,
	}
}

type discountResponse struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Scope         string      `json:"scope"`
	DiscountType  string      `json:"discount_type"`
	DiscountValue int64       `json:"discount_value"`
	Priority      int         `json:"priority"`
	IsStackable   bool        `json:"is_stackable"`
	IsActive      bool        `json:"is_active"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	TargetIDs     []uuid.UUID `json:"target_ids"`
}

func newDiscountResponse(d *models.Discount) discountResponse {
	targets := []uuid.UUID{}
	for _, ids := range [][]uuid.UUID{d.ProductIDs, d.VariantIDs, d.CategoryIDs, d.CollectionIDs} {
		targets = append(targets, ids...)
	}
	return discountResponse{
		ID:            d.ID,
		Name:          d.Name,
		Scope:         d.Scope.String(),
		DiscountType:  d.DiscountType.String(),
		DiscountValue: d.DiscountValue,
		Priority:      d.Priority,
		IsStackable:   d.IsStackable,
		IsActive:      d.IsActive,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		TargetIDs:     targets,
	}
}

// AdminCreateDiscount creates an automatic discount.
func AdminCreateDiscount(svc discounts.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}
		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), payload.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newDiscountResponse(created))
	}
}

// AdminUpdateDiscount replaces every writable field of a discount.
func AdminUpdateDiscount(svc discounts.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}
		discountID, err := uuidParam(r, "discountId", "discount id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), discountID, payload.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newDiscountResponse(updated))
	}
}

type couponRequest struct {
	Code                  string             `json:"code" validate:"required,max=64"`
	DiscountType          enums.DiscountType `json:"discount_type" validate:"required"`
	DiscountValue         int64              `json:"discount_value" validate:"required,min=1"`
	StartDate             time.Time          `json:"start_date" validate:"required"`
	EndDate               time.Time          `json:"end_date" validate:"required"`
	IsActive              bool               `json:"is_active"`
	IsStackable           bool               `json:"is_stackable"`
	MinimumCartValue      *int64             `json:"minimum_cart_value,omitempty"`
	MaxRedemptions        *int64             `json:"max_redemptions,omitempty"`
	MaxRedemptionsPerUser *int64             `json:"max_redemptions_per_user,omitempty"`
}

type couponResponse struct {
	ID                    uuid.UUID `json:"id"`
	Code                  string    `json:"code"`
	DiscountType          string    `json:"discount_type"`
	DiscountValue         int64     `json:"discount_value"`
	StartDate             time.Time `json:"start_date"`
	EndDate               time.Time `json:"end_date"`
	IsActive              bool      `json:"is_active"`
	IsStackable           bool      `json:"is_stackable"`
	MinimumCartValue      *int64    `json:"minimum_cart_value,omitempty"`
	MaxRedemptions        *int64    `json:"max_redemptions,omitempty"`
	MaxRedemptionsPerUser *int64    `json:"max_redemptions_per_user,omitempty"`
}

// AdminCreateCoupon creates a coupon; codes are stored normalized.
func AdminCreateCoupon(svc coupons.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}
		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), coupons.Input{
			Code:                  validators.SanitizeCode(payload.Code),
			Type:                  payload.DiscountType,
			Value:                 payload.DiscountValue,
			StartDate:             payload.StartDate,
			EndDate:               payload.EndDate,
			IsActive:              payload.IsActive,
			IsStackable:           payload.IsStackable,
			MinimumCartValue:      payload.MinimumCartValue,
			MaxRedemptions:        payload.MaxRedemptions,
			MaxRedemptionsPerUser: payload.MaxRedemptionsPerUser,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, couponResponse{
			ID:                    created.ID,
			Code:                  created.Code,
			DiscountType:          created.DiscountType.String(),
			DiscountValue:         created.DiscountValue,
			StartDate:             created.StartDate,
			EndDate:               created.EndDate,
			IsActive:              created.IsActive,
			IsStackable:           created.IsStackable,
			MinimumCartValue:      created.MinimumCartValue,
			MaxRedemptions:        created.MaxRedemptions,
			MaxRedemptionsPerUser: created.MaxRedemptionsPerUser,
		})
	}
}
