package services

import (
	"context"
	"fmt"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"
	"coopsave/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductService manages the store catalog.
type ProductService interface {
	CreateProduct(ctx context.Context, actor *Actor, request *ProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, actor *Actor, productID primitive.ObjectID) (*models.Product, error)
	UpdateProduct(ctx context.Context, actor *Actor, productID primitive.ObjectID, request *ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, actor *Actor, productID primitive.ObjectID) error
	ListProducts(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Product, int64, error)
	GetActiveProducts(ctx context.Context) ([]*models.Product, error)
}

type productService struct {
	productRepo  interfaces.ProductRepository
	auditLogRepo interfaces.AuditLogRepository
	permissions  PermissionService
	logger       *logger.Logger
}

type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

func NewProductService(
	productRepo interfaces.ProductRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	logger *logger.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		auditLogRepo: auditLogRepo,
		permissions:  permissions,
		logger:       logger,
	}
}

func (s *productService) CreateProduct(ctx context.Context, actor *Actor, request *ProductRequest) (*models.Product, error) {
	product, err := s.buildProduct(actor, request)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "product", product.ID.Hex(), map[string]interface{}{
		"name": product.Name,
	})

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, actor *Actor, productID primitive.ObjectID) (*models.Product, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageStores, nil) {
		return nil, ErrPermissionDenied
	}

	return s.productRepo.GetByID(ctx, productID)
}

func (s *productService) UpdateProduct(ctx context.Context, actor *Actor, productID primitive.ObjectID, request *ProductRequest) (*models.Product, error) {
	product, err := s.buildProduct(actor, request)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        product.Name,
		"price":       product.Price,
		"image":       product.Image,
		"description": product.Description,
		"status":      product.Status,
	}
	if err := s.productRepo.Update(ctx, productID, updates); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "product", productID.Hex(), updates)

	return s.productRepo.GetByID(ctx, productID)
}

func (s *productService) DeleteProduct(ctx context.Context, actor *Actor, productID primitive.ObjectID) error {
	if !s.permissions.CanPerform(actor, models.PermissionManageStores, nil) {
		return ErrPermissionDenied
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}

	s.audit(ctx, actor, models.AuditActionDelete, "product", productID.Hex(), nil)

	return nil
}

func (s *productService) ListProducts(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Product, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageStores, nil) {
		return nil, 0, ErrPermissionDenied
	}

	return s.productRepo.List(ctx, params)
}

func (s *productService) GetActiveProducts(ctx context.Context) ([]*models.Product, error) {
	return s.productRepo.GetActive(ctx)
}

func (s *productService) buildProduct(actor *Actor, request *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !s.permissions.CanPerform(actor, models.PermissionManageStores, nil) {
		return nil, ErrPermissionDenied
	}

	status := models.ProductStatusActive
	if request.Status != "" {
		status = models.ProductStatus(request.Status)
		if status != models.ProductStatusActive && status != models.ProductStatusInactive {
			return nil, fmt.Errorf("unknown product status %q", request.Status)
		}
	}

	return &models.Product{
		Name:        request.Name,
		Price:       request.Price,
		Image:       request.Image,
		Description: request.Description,
		Status:      status,
	}, nil
}

func (s *productService) audit(ctx context.Context, actor *Actor, action models.AuditAction, resource, resourceID string, newValues map[string]interface{}) {
	entry := &models.AuditLog{
		AdminID:    &actor.AdminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		NewValues:  newValues,
	}
	if err := s.auditLogRepo.Create(ctx, entry); err != nil {
		s.logger.WithAdminID(actor.AdminID).WithError(err).Warn("failed to write audit entry")
	}
}
