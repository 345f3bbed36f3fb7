package inventory

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateProductRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	WholesalePrice    float64 `json:"wholesale_price"`
	RetailPrice       float64 `json:"retail_price"`
	InitialStock      int     `json:"initial_stock"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	BranchID          *uint   `json:"branch_id"`
}

type UpdateProductRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	WholesalePrice    *float64 `json:"wholesale_price"`
	RetailPrice       *float64 `json:"retail_price"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
}

type DeleteProductRequest struct {
	Reason string `json:"reason"`
}

type SetStockRequest struct {
	Stock int    `json:"stock"`
	Notes string `json:"notes"`
}

type ProductResponse struct {
	ID                uint    `json:"id"`
	BranchID          *uint   `json:"branch_id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	WholesalePrice    float64 `json:"wholesale_price"`
	RetailPrice       float64 `json:"retail_price"`
	Stock             int     `json:"stock"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	IsDeleted         bool    `json:"is_deleted"`
	DeletionReason    string  `json:"deletion_reason,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		BranchID:          p.BranchID,
		Code:              p.Code,
		Name:              p.Name,
		Description:       p.Description,
		WholesalePrice:    p.WholesalePrice,
		RetailPrice:       p.RetailPrice,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		IsDeleted:         p.IsDeleted,
		DeletionReason:    p.DeletionReason,
		CreatedAt:         p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GenerateProductCode - 6 haneli rastgele ürün kodu. Benzersizlik garanti edilmez,
// çakışma ihtimali kabul edilmiş durumda.
func GenerateProductCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}
		if body.WholesalePrice < 0 || body.RetailPrice < 0 || body.InitialStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat ve stok negatif olamaz")
		}

		branchID, err := auth.RequiredBranchID(c, body.BranchID)
		if err != nil {
			return err
		}

		product := models.Product{
			BranchID:       &branchID,
			Code:           GenerateProductCode(),
			Name:           body.Name,
			Description:    strings.TrimSpace(body.Description),
			WholesalePrice: body.WholesalePrice,
			RetailPrice:    body.RetailPrice,
			Stock:          body.InitialStock,
		}
		if body.LowStockThreshold != nil && *body.LowStockThreshold >= 0 {
			product.LowStockThreshold = *body.LowStockThreshold
		} else {
			product.LowStockThreshold = 5
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(product))
	}
}

// GET /api/products?include_deleted=true&low_stock=true&search=...
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		dbq, err := auth.ScopeToBranch(c, dbq)
		if err != nil {
			return err
		}

		// Arşiv görünümü sadece merkez için
		if c.Query("include_deleted") == "true" {
			role, rErr := auth.CurrentRole(c)
			if rErr != nil {
				return rErr
			}
			if !role.IsHeadOffice() {
				return fiber.NewError(fiber.StatusForbidden, "Arşivi sadece merkez görebilir")
			}
		} else {
			dbq = dbq.Where("is_deleted = ?", false)
		}

		if c.Query("low_stock") == "true" {
			dbq = dbq.Where("stock <= low_stock_threshold")
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("name LIKE ? OR code LIKE ?", like, like)
		}

		var products []models.Product
		if err := dbq.Order("name").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}
		return c.JSON(resp)
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var product models.Product
		if err := database.DB.First(&product, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			product.Name = name
		}
		if body.Description != nil {
			product.Description = strings.TrimSpace(*body.Description)
		}
		if body.WholesalePrice != nil {
			if *body.WholesalePrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Toptan fiyat negatif olamaz")
			}
			product.WholesalePrice = *body.WholesalePrice
		}
		if body.RetailPrice != nil {
			if *body.RetailPrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Satış fiyatı negatif olamaz")
			}
			product.RetailPrice = *body.RetailPrice
		}
		if body.LowStockThreshold != nil {
			if *body.LowStockThreshold < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kritik stok eşiği negatif olamaz")
			}
			product.LowStockThreshold = *body.LowStockThreshold
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return c.JSON(toProductResponse(product))
	}
}

// DELETE /api/products/:id
// Arşivleme: zorunlu gerekçe ile soft delete.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var body DeleteProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Reason = strings.TrimSpace(body.Reason)
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Silme gerekçesi zorunlu")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		now := time.Now()
		if err := database.DB.Model(&product).Updates(map[string]interface{}{
			"is_deleted":      true,
			"deletion_reason": body.Reason,
			"deletion_time":   &now,
		}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		userID, username, branchID, err := auth.CurrentUser(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchID,
				UserID:      userID,
				UserName:    username,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Ürün arşivlendi: %s (%s)", product.Name, body.Reason),
				Before:      toProductResponse(product),
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PUT /api/products/:id/stock
// Manuel stok düzeltmesi (sadece merkez). Normal stok hareketi alım/satış/iade
// transaction'larının içinde yapılır; burası sayım farkı gibi düzeltmeler içindir.
func SetStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var body SetStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok negatif olamaz")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		oldStock := product.Stock
		if err := database.DB.Model(&product).Update("stock", body.Stock).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}

		userID, username, branchID, err := auth.CurrentUser(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchID,
				UserID:      userID,
				UserName:    username,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Manuel stok düzeltmesi: %s %d -> %d (%s)", product.Name, oldStock, body.Stock, body.Notes),
				Before:      fiber.Map{"stock": oldStock},
				After:       fiber.Map{"stock": body.Stock},
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		product.Stock = body.Stock
		return c.JSON(toProductResponse(product))
	}
}
