package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindActiveBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error
	SetAppliedCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error
	Touch(ctx context.Context, cartID uuid.UUID) error
	FindLineByItem(ctx context.Context, cartID, productID, variantID uuid.UUID) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	UpdateLine(ctx context.Context, lineID uuid.UUID, quantity int, unitPriceCents int64) error
	UpdateLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int) (bool, error)
	DeleteLine(ctx context.Context, cartID, lineID uuid.UUID) (bool, error)
	DeleteMergedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
