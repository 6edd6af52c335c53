package coupons

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Input is the writable shape of a coupon.
type Input struct {
	Code                  string
	Type                  enums.DiscountType
	Value                 int64
	StartDate             time.Time
	EndDate               time.Time
	IsActive              bool
	IsStackable           bool
	MinimumCartValue      *int64
	MaxRedemptions        *int64
	MaxRedemptionsPerUser *int64
}

type couponWriter interface {
	Create(ctx context.Context, c *models.Coupon) error
}

type AdminService interface {
	Create(ctx context.Context, input Input) (*models.Coupon, error)
}

type adminService struct {
	store couponWriter
}

func NewAdminService(store couponWriter) (AdminService, error) {
	if store == nil {
		return nil, fmt.Errorf("coupon store required")
	}
	return &adminService{store: store}, nil
}

// Create stores a coupon under its normalized code.
func (s *adminService) Create(ctx context.Context, input Input) (*models.Coupon, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:                  Normalize(input.Code),
		DiscountType:          input.Type,
		DiscountValue:         input.Value,
		StartDate:             input.StartDate.UTC(),
		EndDate:               input.EndDate.UTC(),
		IsActive:              input.IsActive,
		IsStackable:           input.IsStackable,
		MinimumCartValue:      input.MinimumCartValue,
		MaxRedemptions:        input.MaxRedemptions,
		MaxRedemptionsPerUser: input.MaxRedemptionsPerUser,
	}
	if err := s.store.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

func validateInput(input Input) error {
	if Normalize(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_type must be PERCENTAGE or FIXED")
	}
	if input.Value <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_value must be positive")
	}
	if input.Type == enums.DiscountTypePercentage && input.Value > money.MaxPercentage {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100").
			WithDetails(map[string]any{"field": "discount_value", "max": money.MaxPercentage})
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid start_date/end_date window is required")
	}
	for field, v := range map[string]*int64{
		"minimum_cart_value":       input.MinimumCartValue,
		"max_redemptions":          input.MaxRedemptions,
		"max_redemptions_per_user": input.MaxRedemptionsPerUser,
	} {
		if v != nil && *v < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" must not be negative")
		}
	}
	return nil
}
