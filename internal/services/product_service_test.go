package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"catalogo/internal/models"
	"catalogo/internal/repositories"
	"catalogo/internal/services"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(event models.ProductEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func eventOfType(eventType, productID string) interface{} {
	return mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == eventType && e.ProductID == productID
	})
}

func newService(repo *MockProductRepository, pub services.EventPublisher) *services.ProductService {
	return services.NewProductService(repo, pub, zerolog.Nop())
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	expectedProducts := []models.Product{
		{ID: "1", Nome: "Product A", Preco: decimal.RequireFromString("10.00")},
		{ID: "2", Nome: "Product B", Preco: decimal.RequireFromString("20.00")},
	}
	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	expectedProduct := &models.Product{ID: "1", Nome: "Product A", Preco: decimal.RequireFromString("10")}

	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	product, err = service.GetProductByID(ctx, "99")
	assert.Nil(t, product)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)
	ctx := context.Background()

	newProduct := &models.Product{ID: "client-chosen", Nome: "New Product", Preco: decimal.RequireFromString("1.239")}

	mockRepo.On("Create", ctx, newProduct).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = "generated"
	}).Return(nil).Once()
	mockPub.On("PublishProductEvent", eventOfType(models.ProductCreated, "generated")).Return(nil).Once()

	err := service.CreateProduct(ctx, newProduct)
	require.NoError(t, err)
	assert.Equal(t, "generated", newProduct.ID)
	assert.Equal(t, "1.24", newProduct.Preco.StringFixed(2))
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_RoundsPriceToTwoPlaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1.999", want: "2.00"},
		{in: "2.005", want: "2.01"},
		{in: "2.004", want: "2.00"},
		{in: "-1.005", want: "-1.01"},
		{in: "7", want: "7.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ctx := context.Background()

			mockRepo := new(MockProductRepository)
			mockRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
			created := &models.Product{Nome: "A", Preco: decimal.RequireFromString(tt.in)}
			require.NoError(t, newService(mockRepo, nil).CreateProduct(ctx, created))
			assert.Equal(t, tt.want, created.Preco.StringFixed(2), "created")
			assert.True(t, created.Preco.Equal(decimal.RequireFromString(tt.want)), "created stored %s", created.Preco)

			mockRepo = new(MockProductRepository)
			mockRepo.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", Nome: "A", Preco: decimal.NewFromInt(1)}, nil).Once()
			mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
			preco := decimal.RequireFromString(tt.in)
			updated, err := newService(mockRepo, nil).UpdateProduct(ctx, "1", models.ProductChanges{Preco: &preco})
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated.Preco.StringFixed(2), "updated")
		})
	}
}

func TestProductService_UpdateProduct_ClearsDescricao(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	descricao := "d"
	mockRepo.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", Nome: "A", Descricao: &descricao, Preco: decimal.NewFromInt(1)}, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.Descricao == nil && p.Nome == "A"
	})).Return(nil).Once()

	updated, err := service.UpdateProduct(ctx, "1", models.ProductChanges{ClearDescricao: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Descricao)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_StoreFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)
	ctx := context.Background()

	newProduct := &models.Product{Nome: "New Product", Preco: decimal.RequireFromString("5")}
	mockRepo.On("Create", ctx, newProduct).Return(errors.New("database error")).Once()

	err := service.CreateProduct(ctx, newProduct)
	assert.ErrorContains(t, err, "database error")
	mockPub.AssertNotCalled(t, "PublishProductEvent", mock.Anything)
}

func TestProductService_CreateProduct_PublishFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)
	ctx := context.Background()

	newProduct := &models.Product{Nome: "New Product", Preco: decimal.RequireFromString("5")}
	mockRepo.On("Create", ctx, newProduct).Return(nil).Once()
	mockPub.On("PublishProductEvent", mock.Anything).Return(errors.New("broker down")).Once()

	assert.NoError(t, service.CreateProduct(ctx, newProduct))
	mockPub.AssertExpectations(t)
}

func TestProductService_UpdateProduct_PreservesUnspecifiedFields(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)
	ctx := context.Background()

	descricao := "d"
	existing := &models.Product{ID: "1", Nome: "A", Descricao: &descricao, Preco: decimal.RequireFromString("1.00")}
	newPrice := decimal.RequireFromString("2.00")

	mockRepo.On("GetByID", ctx, "1").Return(existing, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == "1" && p.Nome == "A" && p.Descricao != nil && *p.Descricao == "d" && p.Preco.Equal(newPrice)
	})).Return(nil).Once()
	mockPub.On("PublishProductEvent", eventOfType(models.ProductUpdated, "1")).Return(nil).Once()

	updated, err := service.UpdateProduct(ctx, "1", models.ProductChanges{Preco: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Nome)
	assert.Equal(t, "d", *updated.Descricao)
	assert.Equal(t, "2.00", updated.Preco.StringFixed(2))
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	nome := "B"
	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()

	updated, err := service.UpdateProduct(ctx, "99", models.ProductChanges{Nome: &nome})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct_StoreFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	nome := "B"
	mockRepo.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", Nome: "A"}, nil).Once()
	mockRepo.On("Update", ctx, mock.Anything).Return(errors.New("connection reset")).Once()

	updated, err := service.UpdateProduct(ctx, "1", models.ProductChanges{Nome: &nome})
	assert.Nil(t, updated)
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", Nome: "A"}, nil).Once()
	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	mockPub.On("PublishProductEvent", eventOfType(models.ProductDeleted, "1")).Return(nil).Once()

	assert.NoError(t, service.DeleteProduct(ctx, "1"))
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()

	err := service.DeleteProduct(ctx, "99")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductService_Ping(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("Ping", ctx).Return(errors.New("down")).Once()
	assert.ErrorContains(t, service.Ping(ctx), "down")
}
