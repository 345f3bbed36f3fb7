package sales

import (
	"errors"
	"fmt"
	"strings"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ledgerError - defter hatasını HTTP hatasına çevirir: doğrulama 400, kalanı 500
func ledgerError(err error, fallback string) error {
	var v validationErr
	if errors.As(err, &v) {
		return fiber.NewError(fiber.StatusBadRequest, v.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

type InvoiceItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateInvoiceRequest struct {
	Items         []InvoiceItemRequest `json:"items"`
	DiscountType  string               `json:"discount_type"` // "percentage" | "fixed"
	DiscountValue float64              `json:"discount_value"`
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `json:"customer_phone"`
	Notes         string               `json:"notes"`
	BranchID      *uint                `json:"branch_id"` // merkez için zorunlu
}

type DeleteInvoiceRequest struct {
	Reason string `json:"reason"`
}

type InvoiceItemResponse struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type InvoiceResponse struct {
	ID                  uint                  `json:"id"`
	BranchID            *uint                 `json:"branch_id"`
	TotalBeforeDiscount float64               `json:"total_before_discount"`
	DiscountType        string                `json:"discount_type"`
	DiscountValue       float64               `json:"discount_value"`
	NetTotal            float64               `json:"net_total"`
	CustomerName        string                `json:"customer_name"`
	CustomerPhone       string                `json:"customer_phone"`
	Notes               string                `json:"notes"`
	CreatorUsername     string                `json:"creator_username"`
	IsDeleted           bool                  `json:"is_deleted"`
	DeletionReason      string                `json:"deletion_reason,omitempty"`
	CreatedAt           string                `json:"created_at"`
	Items               []InvoiceItemResponse `json:"items"`
}

func toInvoiceResponse(inv models.SalesInvoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                  inv.ID,
		BranchID:            inv.BranchID,
		TotalBeforeDiscount: inv.TotalBeforeDiscount,
		DiscountType:        string(inv.DiscountType),
		DiscountValue:       inv.DiscountValue,
		NetTotal:            inv.NetTotal,
		CustomerName:        inv.CustomerName,
		CustomerPhone:       inv.CustomerPhone,
		Notes:               inv.Notes,
		CreatorUsername:     inv.CreatorUsername,
		IsDeleted:           inv.IsDeleted,
		DeletionReason:      inv.DeletionReason,
		CreatedAt:           inv.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:               make([]InvoiceItemResponse, 0, len(inv.Items)),
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return resp
}

// POST /api/sales
func CreateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura en az bir kalem içermeli")
		}

		discountType := models.DiscountType(body.DiscountType)
		if body.DiscountType == "" {
			discountType = models.DiscountPercentage
		}
		if discountType != models.DiscountPercentage && discountType != models.DiscountFixed {
			return fiber.NewError(fiber.StatusBadRequest, "discount_type geçersiz, 'percentage' veya 'fixed' olmalı")
		}
		if body.DiscountValue < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İskonto negatif olamaz")
		}
		if discountType == models.DiscountPercentage && body.DiscountValue > 100 {
			return fiber.NewError(fiber.StatusBadRequest, "Yüzdelik iskonto 100'den büyük olamaz")
		}

		branchID, err := auth.RequiredBranchID(c, body.BranchID)
		if err != nil {
			return err
		}

		userID, username, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		// Kalemler: fiyatlar sunucuda ürün kaydından okunur
		var total float64
		items := make([]models.SalesInvoiceItem, 0, len(body.Items))
		for _, reqItem := range body.Items {
			if reqItem.ProductID == 0 || reqItem.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalemlerde product_id ve quantity > 0 zorunlu")
			}

			var product models.Product
			if err := database.DB.First(&product, "id = ? AND is_deleted = ?", reqItem.ProductID, false).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ürün bulunamadı: %d", reqItem.ProductID))
			}

			subtotal := float64(reqItem.Quantity) * product.RetailPrice
			total += subtotal
			items = append(items, models.SalesInvoiceItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  reqItem.Quantity,
				UnitPrice: product.RetailPrice,
				Subtotal:  subtotal,
			})
		}

		inv := models.SalesInvoice{
			BranchID:            &branchID,
			TotalBeforeDiscount: total,
			DiscountType:        discountType,
			DiscountValue:       body.DiscountValue,
			NetTotal:            ComputeNetTotal(total, discountType, body.DiscountValue),
			CustomerName:        strings.TrimSpace(body.CustomerName),
			CustomerPhone:       strings.TrimSpace(body.CustomerPhone),
			Notes:               body.Notes,
			CreatedBy:           userID,
			CreatorUsername:     username,
			Items:               items,
		}

		if err := RecordInvoice(database.DB, &inv); err != nil {
			return ledgerError(err, "Fatura kaydedilemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    &branchID,
			UserID:      userID,
			UserName:    username,
			EntityType:  "sales_invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Satış faturası kesildi: %.2f TL", inv.NetTotal),
			Before:      nil,
			After:       toInvoiceResponse(inv),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(inv))
	}
}

// GET /api/sales?include_deleted=true&from=...&to=...&search=...
func ListInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SalesInvoice{}).Preload("Items")

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

		if from := c.Query("from"); from != "" {
			dbq = dbq.Where("created_at >= ?", from)
		}
		if to := c.Query("to"); to != "" {
			dbq = dbq.Where("created_at <= ?", to+" 23:59:59")
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("customer_name LIKE ? OR customer_phone LIKE ?", like, like)
		}

		var invoices []models.SalesInvoice
		if err := dbq.Order("created_at desc").Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Faturalar listelenemedi")
		}

		resp := make([]InvoiceResponse, 0, len(invoices))
		for _, inv := range invoices {
			resp = append(resp, toInvoiceResponse(inv))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/sales/:id
// Faturayı arşivler, stoğu geri yükler.
func DeleteInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura id geçersiz")
		}

		var body DeleteInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Reason = strings.TrimSpace(body.Reason)
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Silme gerekçesi zorunlu")
		}

		var existing models.SalesInvoice
		if err := database.DB.First(&existing, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		// Şube personeli başka şubenin faturasını arşivleyemez
		if err := auth.RequireSameBranch(c, existing.BranchID); err != nil {
			return err
		}

		inv, err := ArchiveInvoice(database.DB, uint(id), body.Reason)
		if err != nil {
			return ledgerError(err, "Fatura arşivlenemedi")
		}

		userID, username, branchID, uErr := auth.CurrentUser(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchID,
				UserID:      userID,
				UserName:    username,
				EntityType:  "sales_invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Fatura arşivlendi: #%d (%s)", inv.ID, body.Reason),
				Before:      toInvoiceResponse(*inv),
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
