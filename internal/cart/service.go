// Package cart resolves the active cart for a request and mutates its lines.
package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type variantLoader interface {
	Variant(ctx context.Context, id uuid.UUID) (*catalog.Variant, error)
}

// Resolution is the cart for the current request plus the cookie changes the
// transport layer must make.
type Resolution struct {
	Cart               *models.Cart
	NewSessionID       string
	ClearSessionCookie bool
	Merged             bool
}

// AddItemInput identifies the variant and quantity to add.
type AddItemInput struct {
	VariantID uuid.UUID
	Quantity  int
}

// Service exposes cart resolution and line mutations.
type Service interface {
	ResolveCart(ctx context.Context, userID *uuid.UUID, sessionID string) (*Resolution, error)
	AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, cartID, lineID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo         CartRepository
	tx           txRunner
	variants     variantLoader
	logg         *logger.Logger
	newSessionID func() string
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, variants variantLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant loader required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		variants:     variants,
		logg:         logg,
		newSessionID: uuid.NewString,
	}, nil
}

// ResolveCart returns the cart for the caller. A signed-in user absorbs the
// session cart once; after that the session cart is merged and never loaded
// again.
func (s *service) ResolveCart(ctx context.Context, userID *uuid.UUID, sessionID string) (*Resolution, error) {
	sessionID = strings.TrimSpace(sessionID)
	if userID != nil {
		return s.resolveUserCart(ctx, *userID, sessionID)
	}

	if sessionID != "" {
		cart, err := s.repo.FindActiveBySession(ctx, sessionID)
		if err == nil {
			return &Resolution{Cart: cart}, nil
		}
		if !repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
		}
	}

	newSession := s.newSessionID()
	cart := &models.Cart{SessionID: &newSession, Status: enums.CartStatusActive}
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session cart")
	}
	cart.Lines = []models.CartLine{}
	return &Resolution{Cart: cart, NewSessionID: newSession}, nil
}

func (s *service) resolveUserCart(ctx context.Context, userID uuid.UUID, sessionID string) (*Resolution, error) {
	userCart, err := s.loadOrCreateUserCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := &Resolution{Cart: userCart, ClearSessionCookie: sessionID != ""}
	if sessionID == "" {
		return res, nil
	}

	var merged *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sessionCart, err := txRepo.FindActiveBySession(ctx, sessionID)
		if err != nil {
			if repo.IsNotFound(err) {
				return nil
			}
			return err
		}
		target, err := txRepo.FindActiveByID(ctx, userCart.ID)
		if err != nil {
			return err
		}
		if err := mergeInto(ctx, txRepo, target, sessionCart); err != nil {
			return err
		}
		if err := txRepo.UpdateStatus(ctx, sessionCart.ID, enums.CartStatusMerged); err != nil {
			return err
		}
		merged, err = txRepo.FindActiveByID(ctx, userCart.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge session cart")
	}

	if merged != nil {
		res.Cart = merged
		res.Merged = true
		if s.logg != nil {
			logCtx := s.logg.WithCartID(ctx, merged.ID.String())
			logCtx = s.logg.WithUserID(logCtx, userID.String())
			s.logg.Info(logCtx, "cart.merged")
		}
	}
	return res, nil
}

func (s *service) loadOrCreateUserCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !repo.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user cart")
	}

	cart = &models.Cart{UserID: &userID, Status: enums.CartStatusActive}
	if err := s.repo.Create(ctx, cart); err != nil {
		// lost a race with a concurrent request for the same user
		if db.IsUniqueViolation(err, "") {
			return s.repo.FindActiveByUser(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user cart")
	}
	cart.Lines = []models.CartLine{}
	return cart, nil
}

// mergeInto moves the session lines into target. Quantities of the same
// product and variant are summed and the target keeps its price snapshot.
func mergeInto(ctx context.Context, txRepo CartRepository, target, session *models.Cart) error {
	existing := make(map[[2]uuid.UUID]models.CartLine, len(target.Lines))
	for _, line := range target.Lines {
		existing[[2]uuid.UUID{line.ProductID, line.VariantID}] = line
	}

	for _, line := range session.Lines {
		key := [2]uuid.UUID{line.ProductID, line.VariantID}
		if current, ok := existing[key]; ok {
			if err := txRepo.UpdateLine(ctx, current.ID, current.Quantity+line.Quantity, current.UnitPriceCents); err != nil {
				return err
			}
			continue
		}
		moved := &models.CartLine{
			CartID:         target.ID,
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		}
		if err := txRepo.CreateLine(ctx, moved); err != nil {
			return err
		}
	}

	if target.AppliedCouponID == nil && session.AppliedCouponID != nil {
		if err := txRepo.SetAppliedCoupon(ctx, target.ID, session.AppliedCouponID); err != nil {
			return err
		}
	}
	return txRepo.Touch(ctx, target.ID)
}

// AddItem upserts a line for the variant, summing quantities and refreshing
// the price snapshot.
func (s *service) AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	variant, err := s.variants.Variant(ctx, input.VariantID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if !variant.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "variant is not available").
			WithDetails(map[string]any{"variant_id": variant.ID.String()})
	}

	return s.mutate(ctx, cartID, func(txRepo CartRepository, cart *models.Cart) error {
		line, err := txRepo.FindLineByItem(ctx, cart.ID, variant.ProductID, variant.ID)
		if err == nil {
			return txRepo.UpdateLine(ctx, line.ID, line.Quantity+input.Quantity, variant.PriceCents)
		}
		if !repo.IsNotFound(err) {
			return err
		}
		return txRepo.CreateLine(ctx, &models.CartLine{
			CartID:         cart.ID,
			ProductID:      variant.ProductID,
			VariantID:      variant.ID,
			Quantity:       input.Quantity,
			UnitPriceCents: variant.PriceCents,
		})
	})
}

func (s *service) UpdateItemQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, cartID, func(txRepo CartRepository, cart *models.Cart) error {
		ok, err := txRepo.UpdateLineQuantity(ctx, cart.ID, lineID, quantity)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, cartID, lineID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(txRepo CartRepository, cart *models.Cart) error {
		ok, err := txRepo.DeleteLine(ctx, cart.ID, lineID)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil
	})
}

// mutate runs fn against the active cart in one transaction and returns the
// reloaded cart.
func (s *service) mutate(ctx context.Context, cartID uuid.UUID, fn func(txRepo CartRepository, cart *models.Cart) error) (*models.Cart, error) {
	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		cart, err := txRepo.FindActiveByID(ctx, cartID)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
			}
			return err
		}
		if err := fn(txRepo, cart); err != nil {
			return err
		}
		if err := txRepo.Touch(ctx, cart.ID); err != nil {
			return err
		}
		out, err = txRepo.FindActiveByID(ctx, cart.ID)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart")
	}
	return out, nil
}
