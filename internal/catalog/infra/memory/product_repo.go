package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// ProductRepo keeps products in memory, newest first.
type ProductRepo struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	now      func() time.Time
}

func NewProductRepo(seed ...domain.Product) *ProductRepo {
	r := &ProductRepo{
		products: make(map[string]domain.Product, len(seed)),
		now:      time.Now,
	}
	for _, p := range seed {
		r.products[p.ID] = p
	}
	return r
}

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	PriceCents      int64  `yaml:"price_cents"`
	DiscountPercent int    `yaml:"discount_percent"`
	ImageURL        string `yaml:"image_url"`
	Category        string `yaml:"category"`
	Stock           int    `yaml:"stock"`
	Active          *bool  `yaml:"active"`
}

// LoadFile builds a repo from a YAML catalog file.
func LoadFile(path string) (*ProductRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*ProductRepo, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	base := time.Now().UTC()
	seed := make([]domain.Product, 0, len(f.Products))
	for i, sp := range f.Products {
		if strings.TrimSpace(sp.Name) == "" || sp.PriceCents <= 0 {
			return nil, fmt.Errorf("product %d: name and positive price_cents are required", i)
		}
		id := sp.ID
		if id == "" {
			id = uuid.NewString()
		}
		active := true
		if sp.Active != nil {
			active = *sp.Active
		}
		// earlier entries are listed first
		created := base.Add(-time.Duration(i) * time.Second)
		seed = append(seed, domain.Product{
			ID:              id,
			Name:            strings.TrimSpace(sp.Name),
			Description:     sp.Description,
			Price:           domain.Money{Currency: "BRL", Amount: sp.PriceCents},
			DiscountPercent: sp.DiscountPercent,
			ImageRef:        sp.ImageURL,
			Category:        strings.ToLower(strings.TrimSpace(sp.Category)),
			Stock:           sp.Stock,
			Active:          active,
			CreatedAt:       created,
			UpdatedAt:       created,
		})
	}
	return NewProductRepo(seed...), nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = p
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok || !p.Active {
		return domain.Product{}, app.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.Product, string, error) {
	r.mu.RLock()
	all := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Active && matches(p, f) {
			all = append(all, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	start := 0
	if f.Cursor != "" {
		start = -1
		for i, p := range all {
			if p.ID == f.Cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, "", app.ErrInvalidInput
		}
	}

	end := start + f.Limit
	if f.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	var next string
	if end < len(all) && len(page) > 0 {
		next = page[len(page)-1].ID
	}
	return page, next, nil
}

func matches(p domain.Product, f domain.ListFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
		return false
	}
	return true
}
