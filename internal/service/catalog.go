package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
)

// Количество похожих товаров на странице товара
const relatedProductsLimit = 4

// CatalogResponse — витрина: доступные товары и активные категории
type CatalogResponse struct {
	Products   []*models.Product  `json:"products"`
	Categories []*models.Category `json:"categories"`
}

// ProductResponse — страница товара с похожими товарами той же категории
type ProductResponse struct {
	Product         *models.Product   `json:"product"`
	RelatedProducts []*models.Product `json:"related_products"`
}

// CatalogService определяет чтение витрины магазина.
type CatalogService interface {
	ListProducts(ctx context.Context) (*CatalogResponse, error)
	GetProduct(ctx context.Context, id int64) (*ProductResponse, error)
}

type catalogService struct {
	log          *slog.Logger
	productRepo  storage.ProductStorage
	categoryRepo storage.CategoryStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage, categoryRepo storage.CategoryStorage) CatalogService {
	return &catalogService{
		log:          log,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *catalogService) ListProducts(ctx context.Context) (*CatalogResponse, error) {
	const op = "service.CatalogService.ListProducts"

	products, err := s.productRepo.ListAvailable(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &CatalogResponse{Products: products, Categories: categories}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	const op = "service.CatalogService.GetProduct"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	related, err := s.productRepo.ListRelated(ctx, product.CategoryID, product.ID, relatedProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load related products: %w", op, err)
	}
	return &ProductResponse{Product: product, RelatedProducts: related}, nil
}
