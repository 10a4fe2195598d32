package services

import (
	"context"

	"catalogo/internal/metrics"
	"catalogo/internal/models"
	"catalogo/internal/repositories"

	"github.com/rs/zerolog"
)

// pricePlaces is the scale of the preco column.
const pricePlaces = 2

// EventPublisher publishes product events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	log       zerolog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are sent.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, log zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID. A missing product
// yields an error wrapping repositories.ErrProductNotFound.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new product; the store assigns its ID.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = ""
	product.Preco = product.Preco.Round(pricePlaces)
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}

	metrics.ProductsCreated.Inc()
	s.publish(models.ProductCreated, product)
	return nil
}

// UpdateProduct looks up the product, overlays changes and persists it.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, changes models.ProductChanges) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes.Apply(product)
	product.Preco = product.Preco.Round(pricePlaces)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	metrics.ProductsUpdated.Inc()
	s.publish(models.ProductUpdated, product)
	return product, nil
}

// DeleteProduct looks up the product and removes it.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	s.publish(models.ProductDeleted, product)
	return nil
}

// Ping reports whether the store is reachable.
func (s *ProductService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// publish never fails the calling operation; the mutation is already stored.
func (s *ProductService) publish(eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(models.NewProductEvent(eventType, product)); err != nil {
		s.log.Error().Err(err).Str("type", eventType).Str("product_id", product.ID).Msg("failed to publish product event")
	}
}
