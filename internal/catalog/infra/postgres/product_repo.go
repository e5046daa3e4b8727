package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, name, description, price_cents, discount_percentage, image_url, category, stock, is_active, created_at, updated_at`

// productRow mirrors the products table. Prices are stored in cents.
type productRow struct {
	ID              uuid.UUID
	Name            string
	Description     string
	PriceCents      int64
	DiscountPercent int32
	ImageURL        string
	Category        string
	Stock           int32
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:              r.ID.String(),
		Name:            r.Name,
		Description:     r.Description,
		Price:           domain.Money{Currency: "BRL", Amount: r.PriceCents},
		DiscountPercent: int(r.DiscountPercent),
		ImageRef:        r.ImageURL,
		Category:        r.Category,
		Stock:           int(r.Stock),
		Active:          r.Active,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func scanProduct(row pgx.Row) (productRow, error) {
	var p productRow
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.DiscountPercent,
		&p.ImageURL, &p.Category, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO products(name, description, price_cents, discount_percentage, image_url, category, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price.Amount, p.DiscountPercent, p.ImageRef, p.Category, p.Stock, p.Active)

	created, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, err
	}
	return created.toDomain(), nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND is_active`, prodID)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p.toDomain(), nil
}

// listProductsSQL matches the name search as a literal substring, so % and _
// in a query have no pattern meaning.
const listProductsSQL = `SELECT ` + productColumns + ` FROM products p
		WHERE p.is_active
		  AND ($1 = '' OR strpos(lower(p.name), lower($1)) > 0)
		  AND ($2 = '' OR p.category = $2)
		  AND ($3::uuid IS NULL OR (p.created_at, p.id) < (SELECT c.created_at, c.id FROM products c WHERE c.id = $3))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4`

func (r *ProductRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.Product, string, error) {
	var cur uuid.NullUUID
	if strings.TrimSpace(f.Cursor) != "" {
		uid, err := uuid.Parse(strings.TrimSpace(f.Cursor))
		if err != nil {
			return nil, "", app.ErrInvalidInput
		}
		cur = uuid.NullUUID{UUID: uid, Valid: true}
	}

	rows, err := r.pool.Query(ctx, listProductsSQL, f.Query, f.Category, cur, f.Limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, f.Limit)
	var nextCursor string
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p.toDomain())
		nextCursor = p.ID.String()
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < f.Limit {
		nextCursor = ""
	}
	return out, nextCursor, nil
}
