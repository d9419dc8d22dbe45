package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"inventory/internal/apperr"
	"inventory/internal/merge"
	"inventory/internal/models"
	"inventory/internal/query"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandlerOptions holds the request defaults of ProductHandler.
type ProductHandlerOptions struct {
	DefaultPageLimit       int
	LowStockThreshold      int
	CriticalStockThreshold int
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	opts    ProductHandlerOptions
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, opts ProductHandlerOptions) *ProductHandler {
	if opts.DefaultPageLimit <= 0 {
		opts.DefaultPageLimit = 10
	}
	return &ProductHandler{
		service: service,
		opts:    opts,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/total-stock-value", h.HandleTotalStockValue)
	productRoutes.Get("/total-stock-value-by-manufacturer", h.HandleStockValueByManufacturer)
	productRoutes.Get("/low-stock", h.HandleLowStock)
	productRoutes.Get("/critical-stock", h.HandleCriticalStock)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleReplaceProduct)
	productRoutes.Patch("/:id", h.HandlePatchProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts returns one page of products. Query parameters:
// category, manufacturer, amountInStock (max), limit and page.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	var fields []apperr.FieldError
	limit := intQuery(c, "limit", h.opts.DefaultPageLimit, &fields)
	page := intQuery(c, "page", 1, &fields)

	filter := query.ProductFilter{
		Category:         c.Query("category"),
		ManufacturerName: c.Query("manufacturer"),
	}
	if raw := strings.TrimSpace(c.Query("amountInStock")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, apperr.FieldError{Path: "amountInStock", Message: "must be an integer"})
		} else {
			filter.MaxAmountInStock = &n
		}
	}
	if len(fields) > 0 {
		return writeError(c, apperr.Validation(fields))
	}

	result, err := h.service.ListProducts(c.UserContext(), filter, query.Pagination{Limit: limit, Page: page})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleTotalStockValue(c *fiber.Ctx) error {
	total, err := h.service.TotalStockValue(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"totalStockValue": total})
}

func (h *ProductHandler) HandleStockValueByManufacturer(c *fiber.Ctx) error {
	rows, err := h.service.StockValueByManufacturer(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

// HandleLowStock lists products below the low-stock threshold, which the
// threshold query parameter overrides.
func (h *ProductHandler) HandleLowStock(c *fiber.Ctx) error {
	var fields []apperr.FieldError
	threshold := intQuery(c, "threshold", h.opts.LowStockThreshold, &fields)
	if len(fields) > 0 {
		return writeError(c, apperr.Validation(fields))
	}
	products, err := h.service.LowStock(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleCriticalStock(c *fiber.Ctx) error {
	var fields []apperr.FieldError
	threshold := intQuery(c, "threshold", h.opts.CriticalStockThreshold, &fields)
	if len(fields) > 0 {
		return writeError(c, apperr.Validation(fields))
	}
	products, err := h.service.CriticalStock(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := decodeProductInput(c.Body(), &in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	created, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleReplaceProduct replaces an existing product.
func (h *ProductHandler) HandleReplaceProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := decodeProductInput(c.Body(), &in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	updated, err := h.service.ReplaceProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

// HandlePatchProduct applies a partial update to a product.
func (h *ProductHandler) HandlePatchProduct(c *fiber.Ctx) error {
	var patch map[string]interface{}
	if err := json.Unmarshal(c.Body(), &patch); err != nil || patch == nil {
		return badRequest(c, "Request body must be a JSON object", err)
	}
	updated, err := h.service.PatchProduct(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product and returns its last state.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	deleted, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(deleted)
}

// decodeProductInput decodes a create/replace body, accepting a manufacturer
// id string in place of the manufacturer object.
func decodeProductInput(body []byte, in *models.ProductInput) error {
	var doc merge.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return err
	}
	if doc == nil {
		return errNotAnObject
	}
	return merge.Decode(merge.NormalizeRefs(doc, merge.ProductRelations), in)
}

// intQuery parses an integer query parameter, recording a field error when
// it is not a number.
func intQuery(c *fiber.Ctx, key string, fallback int, fields *[]apperr.FieldError) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*fields = append(*fields, apperr.FieldError{Path: key, Message: "must be an integer"})
		return fallback
	}
	return n
}
