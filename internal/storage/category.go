package storage

import (
	"context"
	"database/sql"

	"github.com/linemk/farm-shop/internal/domain/models"
)

// CategoryStorage описывает методы для работы с категориями товаров.
type CategoryStorage interface {
	// ListActive возвращает активные категории в порядке отображения.
	ListActive(ctx context.Context) ([]*models.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryStorage {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT id, name, slug, COALESCE(description, ''), is_active, sort_order
		FROM categories
		WHERE is_active = TRUE
		ORDER BY sort_order`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}
