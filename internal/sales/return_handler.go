package sales

import (
	"fmt"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReturnItemRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type CreateSalesReturnRequest struct {
	InvoiceID *uint               `json:"invoice_id"` // serbest iadede boş olabilir
	Items     []ReturnItemRequest `json:"items"`
	Notes     string              `json:"notes"`
	BranchID  *uint               `json:"branch_id"`
}

type SalesReturnItemResponse struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type SalesReturnResponse struct {
	ID          uint                      `json:"id"`
	BranchID    *uint                     `json:"branch_id"`
	InvoiceID   *uint                     `json:"invoice_id"`
	TotalRefund float64                   `json:"total_refund"`
	Notes       string                    `json:"notes"`
	CreatedAt   string                    `json:"created_at"`
	Items       []SalesReturnItemResponse `json:"items"`
}

func toSalesReturnResponse(ret models.SalesReturn) SalesReturnResponse {
	resp := SalesReturnResponse{
		ID:          ret.ID,
		BranchID:    ret.BranchID,
		InvoiceID:   ret.InvoiceID,
		TotalRefund: ret.TotalRefund,
		Notes:       ret.Notes,
		CreatedAt:   ret.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:       make([]SalesReturnItemResponse, 0, len(ret.Items)),
	}
	for _, item := range ret.Items {
		resp.Items = append(resp.Items, SalesReturnItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return resp
}

// POST /api/sales-returns
func CreateSalesReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSalesReturnRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İade en az bir kalem içermeli")
		}

		branchID, err := auth.RequiredBranchID(c, body.BranchID)
		if err != nil {
			return err
		}

		userID, username, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var total float64
		items := make([]models.SalesReturnItem, 0, len(body.Items))
		for _, reqItem := range body.Items {
			if reqItem.ProductID == 0 || reqItem.Quantity <= 0 || reqItem.UnitPrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalemlerde product_id, quantity > 0 ve unit_price >= 0 zorunlu")
			}

			var product models.Product
			if err := database.DB.First(&product, "id = ?", reqItem.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ürün bulunamadı: %d", reqItem.ProductID))
			}

			subtotal := float64(reqItem.Quantity) * reqItem.UnitPrice
			total += subtotal
			items = append(items, models.SalesReturnItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  reqItem.Quantity,
				UnitPrice: reqItem.UnitPrice,
				Subtotal:  subtotal,
			})
		}

		ret := models.SalesReturn{
			BranchID:    &branchID,
			InvoiceID:   body.InvoiceID,
			TotalRefund: total,
			Notes:       body.Notes,
			CreatedBy:   userID,
			Items:       items,
		}

		if err := RecordSalesReturn(database.DB, &ret); err != nil {
			return ledgerError(err, "İade kaydedilemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    &branchID,
			UserID:      userID,
			UserName:    username,
			EntityType:  "sales_return",
			EntityID:    ret.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Müşteri iadesi alındı: %.2f TL", ret.TotalRefund),
			Before:      nil,
			After:       toSalesReturnResponse(ret),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toSalesReturnResponse(ret))
	}
}

// GET /api/sales-returns
func ListSalesReturnsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SalesReturn{}).
			Preload("Items").
			Where("is_deleted = ?", false)

		dbq, err := auth.ScopeToBranch(c, dbq)
		if err != nil {
			return err
		}

		if invStr := c.Query("invoice_id"); invStr != "" {
			var invID uint
			if _, err := fmt.Sscan(invStr, &invID); err != nil || invID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "invoice_id geçersiz")
			}
			dbq = dbq.Where("invoice_id = ?", invID)
		}

		var rows []models.SalesReturn
		if err := dbq.Order("created_at desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İadeler listelenemedi")
		}

		resp := make([]SalesReturnResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, toSalesReturnResponse(r))
		}
		return c.JSON(resp)
	}
}
