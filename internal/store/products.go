package store

import (
	"context"
	"database/sql"
)

// Product は商品のレコードです。
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// CatalogStore は商品カタログへの読み取り専用アクセスを提供します。
type CatalogStore interface {
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]Product, error)
}

type catalogStore struct {
	db *sql.DB
}

// NewCatalogStore は CatalogStore のPostgreSQL実装を作成します。
func NewCatalogStore(db *sql.DB) CatalogStore {
	return &catalogStore{db: db}
}

func (s *catalogStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *catalogStore) ByCategory(ctx context.Context, category string) ([]Product, error) {
	const q = `
		SELECT id, name, description, price, category
		FROM products
		WHERE category = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
