package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"glowcandles/internal/domain"
	"glowcandles/internal/repos"
)

type CartService struct {
	Store *repos.Store
}

func NewCartService(store *repos.Store) *CartService {
	return &CartService{Store: store}
}

func (s *CartService) View(ctx context.Context, p domain.Principal) (*domain.Cart, error) {
	lines, err := s.Store.Carts.Lines(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	cart := &domain.Cart{Items: lines, Total: decimal.Zero}
	for _, l := range lines {
		cart.ItemCount += l.Quantity
		cart.Total = cart.Total.Add(l.LineTotal())
	}
	return cart, nil
}

// Add puts qty more units of productID in the cart. The resulting quantity
// may not exceed the current stock.
func (s *CartService) Add(ctx context.Context, p domain.Principal, productID string, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, invalid(ErrInvalidQuantity, "quantity", "must be at least 1")
	}
	err := s.Store.WithTx(ctx, func(tx *repos.Store) error {
		prod, err := tx.Products.FindActive(ctx, productID)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		have, err := tx.Carts.Quantity(ctx, p.UserID, productID)
		if err != nil {
			return err
		}
		if have+qty > prod.StockQuantity {
			return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, prod.StockQuantity, prod.Name)
		}
		return tx.Carts.Set(ctx, p.UserID, productID, have+qty)
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, p)
}

// Update sets the absolute quantity of a line already in the cart.
func (s *CartService) Update(ctx context.Context, p domain.Principal, productID string, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, invalid(ErrInvalidQuantity, "quantity", "must be at least 1")
	}
	err := s.Store.WithTx(ctx, func(tx *repos.Store) error {
		have, err := tx.Carts.Quantity(ctx, p.UserID, productID)
		if err != nil {
			return err
		}
		if have == 0 {
			return ErrCartItemNotFound
		}
		prod, err := tx.Products.FindActive(ctx, productID)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if qty > prod.StockQuantity {
			return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, prod.StockQuantity, prod.Name)
		}
		return tx.Carts.Set(ctx, p.UserID, productID, qty)
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, p)
}

func (s *CartService) Remove(ctx context.Context, p domain.Principal, productID string) (*domain.Cart, error) {
	if err := s.Store.Carts.Remove(ctx, p.UserID, productID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return s.View(ctx, p)
}

func (s *CartService) Clear(ctx context.Context, p domain.Principal) error {
	return s.Store.Carts.Clear(ctx, p.UserID)
}
