package handlers

import (
	"errors"
	"time"

	"catalogo/internal/models"
	"catalogo/internal/repositories"
	"catalogo/internal/services"
	"catalogo/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Client-facing error messages. Store failures never expose the underlying error.
const (
	MsgInvalidBody  = "Corpo da requisição inválido"
	MsgNotFound     = "Produto não encontrado"
	MsgCreateFailed = "Erro ao criar produto"
	MsgListFailed   = "Erro ao buscar produtos"
	MsgGetFailed    = "Erro ao buscar produto"
	MsgUpdateFailed = "Erro ao atualizar produto"
	MsgDeleteFailed = "Erro ao deletar produto"
)

const timestampLayout = time.RFC3339Nano

// ProductResponse is the JSON shape of a product.
type ProductResponse struct {
	ID        string  `json:"id"`
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
	Preco     string  `json:"preco"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validation.Validator
	log      zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validation.New(),
		log:      log,
	}
}

// RegisterRoutes registers the product routes on router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct validates the body and stores a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := bindBody(c, &req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create product body")
		return errorResponse(c, fiber.StatusBadRequest, MsgInvalidBody)
	}

	if fieldErrors := h.validate.ValidateCreate(req); len(fieldErrors) > 0 {
		return validationResponse(c, fieldErrors)
	}

	preco, err := req.Preco.Decimal()
	if err != nil {
		return validationResponse(c, []validation.FieldError{{Field: "preco", Message: validation.MessagePrecoDecimal}})
	}

	product := &models.Product{
		Nome:      req.Nome,
		Descricao: req.Descricao,
		Preco:     preco,
	}
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		h.log.Error().Err(err).Msg("error creating product")
		return errorResponse(c, fiber.StatusInternalServerError, MsgCreateFailed)
	}

	return c.Status(fiber.StatusCreated).JSON(toProductResponse(product))
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("error listing products")
		return errorResponse(c, fiber.StatusInternalServerError, MsgListFailed)
	}

	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return errorResponse(c, fiber.StatusNotFound, MsgNotFound)
		}
		h.log.Error().Err(err).Str("product_id", id).Msg("error getting product")
		return errorResponse(c, fiber.StatusInternalServerError, MsgGetFailed)
	}
	return c.Status(fiber.StatusOK).JSON(toProductResponse(product))
}

// HandleUpdateProduct applies the provided fields to an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var req models.UpdateProductRequest
	if err := bindBody(c, &req); err != nil {
		h.log.Debug().Err(err).Str("product_id", id).Msg("invalid update product body")
		return errorResponse(c, fiber.StatusBadRequest, MsgInvalidBody)
	}

	if fieldErrors := h.validate.ValidateUpdate(req); len(fieldErrors) > 0 {
		return validationResponse(c, fieldErrors)
	}

	changes := models.ProductChanges{
		Nome:           req.Nome.Ptr(),
		Descricao:      req.Descricao.Ptr(),
		ClearDescricao: req.Descricao.Set && req.Descricao.Null,
	}
	if req.Preco.Set {
		preco, err := req.Preco.Value.Decimal()
		if err != nil {
			return validationResponse(c, []validation.FieldError{{Field: "preco", Message: validation.MessagePrecoDecimal}})
		}
		changes.Preco = &preco
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, changes)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return errorResponse(c, fiber.StatusNotFound, MsgNotFound)
		}
		h.log.Error().Err(err).Str("product_id", id).Msg("error updating product")
		return errorResponse(c, fiber.StatusInternalServerError, MsgUpdateFailed)
	}
	return c.Status(fiber.StatusOK).JSON(toProductResponse(product))
}

// HandleDeleteProduct removes a product and answers with an empty 204.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return errorResponse(c, fiber.StatusNotFound, MsgNotFound)
		}
		h.log.Error().Err(err).Str("product_id", id).Msg("error deleting product")
		return errorResponse(c, fiber.StatusInternalServerError, MsgDeleteFailed)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// bindBody decodes a JSON body into out. An empty body leaves out untouched.
func bindBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func validationResponse(c *fiber.Ctx, fieldErrors []validation.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrors})
}

func toProductResponse(product *models.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Nome:      product.Nome,
		Descricao: product.Descricao,
		Preco:     product.Preco.StringFixed(2),
		CreatedAt: product.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt: product.UpdatedAt.UTC().Format(timestampLayout),
	}
}
