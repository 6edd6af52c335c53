package discounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Input is the writable shape of a discount.
type Input struct {
	Name        string
	Scope       enums.DiscountScope
	Type        enums.DiscountType
	Value       int64
	Priority    int
	IsStackable bool
	IsActive    bool
	StartDate   time.Time
	EndDate     time.Time
	TargetIDs   []uuid.UUID
}

type adminStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
	Create(ctx context.Context, d *models.Discount) error
	Save(ctx context.Context, d *models.Discount) error
}

// AdminService creates and updates discounts.
type AdminService interface {
	Create(ctx context.Context, input Input) (*models.Discount, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Discount, error)
}

type adminService struct {
	store adminStore
}

func NewAdminService(store adminStore) (AdminService, error) {
	if store == nil {
		return nil, fmt.Errorf("discount store required")
	}
	return &adminService{store: store}, nil
}

func (s *adminService) Create(ctx context.Context, input Input) (*models.Discount, error) {
	row := &models.Discount{}
	if err := apply(row, input); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount")
	}
	return row, nil
}

func (s *adminService) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Discount, error) {
	row, err := s.store.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}
	if err := apply(row, input); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount")
	}
	return row, nil
}

// Validate checks an input without persisting it.
func Validate(input Input) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
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
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start_date and end_date are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_date must not be before start_date")
	}
	if !input.Scope.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount scope")
	}
	if _, err := NewTarget(input.Scope, input.TargetIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return nil
}

func apply(row *models.Discount, input Input) error {
	if err := Validate(input); err != nil {
		return err
	}
	target, _ := NewTarget(input.Scope, input.TargetIDs)

	row.Name = strings.TrimSpace(input.Name)
	row.Scope = input.Scope
	row.DiscountType = input.Type
	row.DiscountValue = input.Value
	row.Priority = input.Priority
	row.IsStackable = input.IsStackable
	row.IsActive = input.IsActive
	row.StartDate = input.StartDate.UTC()
	row.EndDate = input.EndDate.UTC()

	row.ProductIDs, row.VariantIDs, row.CategoryIDs, row.CollectionIDs = nil, nil, nil, nil
	ids := target.IDs()
	switch input.Scope {
	case enums.DiscountScopeProduct:
		row.ProductIDs = ids
	case enums.DiscountScopeVariant:
		row.VariantIDs = ids
	case enums.DiscountScopeCategory:
		row.CategoryIDs = ids
	case enums.DiscountScopeCollection:
		row.CollectionIDs = ids
	}
	return nil
}
