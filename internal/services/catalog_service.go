package services

import (
	"context"
	"errors"

	"glowcandles/internal/domain"
	"glowcandles/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) List(ctx context.Context, q, category string) ([]domain.Product, error) {
	return s.Prods.ListActive(ctx, repos.ProductFilter{Query: q, Category: category})
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.Prods.FindActive(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *CatalogService) CheckAvailability(ctx context.Context, id string) (domain.Availability, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.Availability{}, err
	}
	status := "OUT_OF_STOCK"
	switch {
	case p.StockQuantity >= 5:
		status = "IN_STOCK"
	case p.StockQuantity > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: p.StockQuantity}, nil
}
