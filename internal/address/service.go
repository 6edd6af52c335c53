// Package address exposes the saved addresses of a user to shipping and
// checkout.
package address

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	addr, err := s.repo.FindForUser(ctx, userID, addressID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeAddressAbsent, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return addr, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	out, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return out, nil
}

// SetDefault makes the address the user's only default in one transaction.
func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	var out *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		addr, err := txRepo.FindForUser(ctx, userID, addressID)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeAddressAbsent, "address not found")
			}
			return err
		}
		if addr.IsDefault {
			out = addr
			return nil
		}
		if err := txRepo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		if err := txRepo.MarkDefault(ctx, addr.ID); err != nil {
			return err
		}
		addr.IsDefault = true
		out = addr
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
	}
	return out, nil
}
