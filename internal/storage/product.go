package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/farm-shop/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	// GetProductByIDTx читает товар внутри транзакции оформления заказа.
	GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
	// GetProductByID возвращает товар вместе с названием категории.
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// ListAvailable возвращает доступные товары, от новых к старым.
	ListAvailable(ctx context.Context) ([]*models.Product, error)
	// ListRelated возвращает доступные товары той же категории, кроме самого товара.
	ListRelated(ctx context.Context, categoryID, excludeID int64, limit int) ([]*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := `
		SELECT id, category_id, name, slug, price, unit, stock_quantity, is_available, is_featured, created_at
		FROM products WHERE id = $1`
	row := tx.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Price, &p.Unit,
		&p.StockQuantity, &p.IsAvailable, &p.IsFeatured, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := `
		SELECT p.id, p.category_id, c.name, p.name, p.slug, COALESCE(p.description, ''),
		       p.price, p.unit, p.stock_quantity, p.is_available, p.is_featured, p.created_at
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.Unit, &p.StockQuantity, &p.IsAvailable, &p.IsFeatured, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ListAvailable(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT p.id, p.category_id, c.name, p.name, p.slug, COALESCE(p.description, ''),
		       p.price, p.unit, p.stock_quantity, p.is_available, p.is_featured, p.created_at
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.is_available = TRUE
		ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListRelated(ctx context.Context, categoryID, excludeID int64, limit int) ([]*models.Product, error) {
	query := `
		SELECT p.id, p.category_id, c.name, p.name, p.slug, COALESCE(p.description, ''),
		       p.price, p.unit, p.stock_quantity, p.is_available, p.is_featured, p.created_at
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.category_id = $1 AND p.id <> $2 AND p.is_available = TRUE
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, categoryID, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query related products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Slug, &p.Description,
			&p.Price, &p.Unit, &p.StockQuantity, &p.IsAvailable, &p.IsFeatured, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
