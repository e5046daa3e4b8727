package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const defaultCurrency = "BRL"

type Service struct {
	repo ProductRepo

	maxConcurrent int
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo:          repo,
		maxConcurrent: 10,
	}
}

type CreateProductInput struct {
	Name            string
	Description     string
	PriceCents      int64
	DiscountPercent int
	ImageRef        string
	Category        string
	Stock           int
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.ToLower(strings.TrimSpace(in.Category))

	if name == "" || in.PriceCents <= 0 || in.Stock < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	if in.DiscountPercent < 0 || in.DiscountPercent >= 100 {
		return domain.Product{}, ErrInvalidInput
	}

	p := domain.Product{
		Name:        name,
		Description: in.Description,
		Price: domain.Money{
			Currency: defaultCurrency,
			Amount:   in.PriceCents,
		},
		DiscountPercent: in.DiscountPercent,
		ImageRef:        strings.TrimSpace(in.ImageRef),
		Category:        category,
		Stock:           in.Stock,
		Active:          true,
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// GetProducts fetches ids concurrently and returns them in the same order.
func (s *Service) GetProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	out := make([]domain.Product, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range ids {
		g.Go(func() error {
			p, err := s.GetProduct(ctx, ids[idx])
			if err != nil {
				return err
			}
			out[idx] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListProducts(ctx context.Context, f domain.ListFilter) ([]domain.Product, string, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	f.Query = strings.TrimSpace(f.Query)
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	if f.Category == "todos" || f.Category == "all" {
		f.Category = ""
	}
	f.Cursor = strings.TrimSpace(f.Cursor)
	return s.repo.List(ctx, f)
}
