package store

import (
	"context"

	"farmacia/m/domain"
)

func (q *Queries) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	id, err := q.insert(ctx, `INSERT INTO products (name, description, unit_price, image_url) VALUES (?, ?, ?, ?) RETURNING id`,
		p.Name, p.Description, p.UnitPrice, p.ImageURL)
	if err != nil {
		return domain.Product{}, err
	}
	return q.GetProduct(ctx, id)
}

func (q *Queries) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := q.get(ctx, &p, `SELECT id, name, description, unit_price, image_url, created_at FROM products WHERE id = ?`, id)
	return p, err
}

func (q *Queries) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	n, err := q.exec(ctx, `UPDATE products SET name = ?, description = ?, unit_price = ?, image_url = ? WHERE id = ?`,
		p.Name, p.Description, p.UnitPrice, p.ImageURL, p.ID)
	if err != nil {
		return domain.Product{}, err
	}
	if n == 0 {
		return domain.Product{}, ErrNotFound
	}
	return q.GetProduct(ctx, p.ID)
}

func (q *Queries) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := q.sel(ctx, &products, `SELECT id, name, description, unit_price, image_url, created_at FROM products ORDER BY name`)
	return products, err
}

// FindProductByName is used by the catalog loader to skip rows already present.
func (q *Queries) FindProductByName(ctx context.Context, name string) (domain.Product, error) {
	var p domain.Product
	err := q.get(ctx, &p, `SELECT id, name, description, unit_price, image_url, created_at FROM products WHERE name = ?`, name)
	return p, err
}

func (q *Queries) CreateBranch(ctx context.Context, b domain.Branch) (domain.Branch, error) {
	id, err := q.insert(ctx, `INSERT INTO branches (name, address, phone) VALUES (?, ?, ?) RETURNING id`,
		b.Name, b.Address, b.Phone)
	if err != nil {
		return domain.Branch{}, err
	}
	return q.GetBranch(ctx, id)
}

func (q *Queries) GetBranch(ctx context.Context, id int64) (domain.Branch, error) {
	var b domain.Branch
	err := q.get(ctx, &b, `SELECT id, name, address, phone, created_at FROM branches WHERE id = ?`, id)
	return b, err
}

func (q *Queries) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	branches := []domain.Branch{}
	err := q.sel(ctx, &branches, `SELECT id, name, address, phone, created_at FROM branches ORDER BY id`)
	return branches, err
}
