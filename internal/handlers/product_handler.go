package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.ProductRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Product created", product)
}

func (h *ProductHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	productID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), actor, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Product retrieved", product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	actor := middleware.GetActor(c)
	productID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request services.ProductRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), actor, productID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Product updated", product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	actor := middleware.GetActor(c)
	productID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), actor, productID); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *ProductHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Products retrieved", products, listMeta(params, total, len(products)))
}

func (h *ProductHandler) ListActive(c *gin.Context) {
	products, err := h.productService.GetActiveProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Products retrieved", products)
}
