package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// CategoryRequest represents the create/update category request
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ProductRequest represents the create/update product request
type ProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   *string         `json:"description"`
	SKU           string          `json:"sku"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellPrice     decimal.Decimal `json:"sell_price" binding:"required"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    uuid.UUID       `json:"category_id" binding:"required"`
	ImageURL      *string         `json:"image_url"`
}

// UpdateStockRequest represents the set-stock request
type UpdateStockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ImportRequest represents a bulk product import request
type ImportRequest struct {
	Rows []ImportRowRequest `json:"rows" binding:"required,min=1,dive"`
}

// ImportRowRequest is one row of a bulk import
type ImportRowRequest struct {
	Name          string          `json:"name" binding:"required"`
	SKU           string          `json:"sku"`
	CategoryName  string          `json:"category_name" binding:"required"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	StockQuantity int             `json:"stock_quantity"`
}

// RegisterRoutes mounts the catalog endpoints on an authenticated group
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	categories := rg.Group("/categories")
	{
		categories.GET("", handleListCategories(svc))
		categories.GET("/:id", handleGetCategory(svc))
		categories.GET("/:id/products", handleListProductsByCategory(svc))
		categories.POST("", handleCreateCategory(svc))
		categories.PUT("/:id", handleUpdateCategory(svc))
		categories.DELETE("/:id", handleDeleteCategory(svc))
	}

	products := rg.Group("/products")
	{
		products.GET("", handleListProducts(svc))
		products.GET("/:id", handleGetProduct(svc))
		products.POST("", handleCreateProduct(svc))
		products.PUT("/:id", handleUpdateProduct(svc))
		products.PUT("/:id/stock", handleUpdateStock(svc))
		products.DELETE("/:id", handleDeleteProduct(svc))
		products.POST("/import", handleImport(svc))
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func handleListCategories(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.ListCategories(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Categories retrieved successfully", cats)
	}
}

func handleGetCategory(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		cat, err := svc.GetCategory(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Category retrieved successfully", cat)
	}
}

func handleCreateCategory(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		cat, err := svc.CreateCategory(c.Request.Context(), CategoryInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Category created successfully", cat)
	}
}

func handleUpdateCategory(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		cat, err := svc.UpdateCategory(c.Request.Context(), id, CategoryInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Category updated successfully", cat)
	}
}

func handleDeleteCategory(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := svc.DeleteCategory(c.Request.Context(), id); err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Category deleted successfully", nil)
	}
}

func handleListProducts(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		prods, err := svc.ListProducts(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Products retrieved successfully", prods)
	}
}

func handleGetProduct(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		p, err := svc.GetProduct(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Product retrieved successfully", p)
	}
}

func handleListProductsByCategory(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		prods, err := svc.ListProductsByCategory(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Products retrieved successfully", prods)
	}
}

func productInput(req ProductRequest) ProductInput {
	return ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		CostPrice:     req.CostPrice,
		SellPrice:     req.SellPrice,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		ImageURL:      req.ImageURL,
	}
}

func handleCreateProduct(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		p, err := svc.CreateProduct(c.Request.Context(), productInput(req))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Product created successfully", p)
	}
}

func handleUpdateProduct(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		p, err := svc.UpdateProduct(c.Request.Context(), id, productInput(req))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Product updated successfully", p)
	}
}

func handleUpdateStock(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req UpdateStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		p, err := svc.UpdateStock(c.Request.Context(), id, *req.Quantity)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Stock updated successfully", p)
	}
}

func handleDeleteProduct(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := svc.DeleteProduct(c.Request.Context(), id); err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Product deleted successfully", nil)
	}
}

func handleImport(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		rows := make([]ImportRow, 0, len(req.Rows))
		for _, r := range req.Rows {
			rows = append(rows, ImportRow{
				Name:          r.Name,
				SKU:           r.SKU,
				CategoryName:  r.CategoryName,
				CostPrice:     r.CostPrice,
				SellPrice:     r.SellPrice,
				StockQuantity: r.StockQuantity,
			})
		}
		result, err := svc.Import(c.Request.Context(), rows)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Import finished", result)
	}
}
