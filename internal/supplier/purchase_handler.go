package supplier

import (
	"fmt"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PurchaseItemRequest struct {
	ProductID   uint    `json:"product_id"`
	Quantity    int     `json:"quantity"`
	CostPrice   float64 `json:"cost_price"`
	RetailPrice float64 `json:"retail_price"`
}

type CreatePurchaseRequest struct {
	SupplierID        uint                  `json:"supplier_id"`
	SupplierInvoiceNo string                `json:"supplier_invoice_no"`
	Items             []PurchaseItemRequest `json:"items"`
	PaidAmount        float64               `json:"paid_amount"`
	PaymentStatus     string                `json:"payment_status"` // "cash" | "credit"
	Notes             string                `json:"notes"`
	BranchID          *uint                 `json:"branch_id"` // Merkez için zorunlu
}

type PurchaseItemResponse struct {
	ProductID   uint    `json:"product_id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	CostPrice   float64 `json:"cost_price"`
	RetailPrice float64 `json:"retail_price"`
	Subtotal    float64 `json:"subtotal"`
}

type PurchaseResponse struct {
	ID                uint                   `json:"id"`
	BranchID          uint                   `json:"branch_id"`
	SupplierID        uint                   `json:"supplier_id"`
	SupplierName      string                 `json:"supplier_name"`
	SupplierInvoiceNo string                 `json:"supplier_invoice_no"`
	Items             []PurchaseItemResponse `json:"items"`
	TotalAmount       float64                `json:"total_amount"`
	PaidAmount        float64                `json:"paid_amount"`
	RemainingAmount   float64                `json:"remaining_amount"`
	PaymentStatus     string                 `json:"payment_status"`
	Notes             string                 `json:"notes"`
	CreatedAt         string                 `json:"created_at"`
}

func toPurchaseResponse(p models.PurchaseRecord) PurchaseResponse {
	items := make([]PurchaseItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, PurchaseItemResponse{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			CostPrice:   it.CostPrice,
			RetailPrice: it.RetailPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return PurchaseResponse{
		ID:                p.ID,
		BranchID:          p.BranchID,
		SupplierID:        p.SupplierID,
		SupplierName:      p.SupplierName,
		SupplierInvoiceNo: p.SupplierInvoiceNo,
		Items:             items,
		TotalAmount:       p.TotalAmount,
		PaidAmount:        p.PaidAmount,
		RemainingAmount:   p.RemainingAmount,
		PaymentStatus:     string(p.PaymentStatus),
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/purchases
func CreatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id zorunlu")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir kalem girilmeli")
		}
		if body.SupplierInvoiceNo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_invoice_no zorunlu")
		}

		status := models.PurchasePaymentStatus(body.PaymentStatus)
		if status != models.PurchaseStatusCash && status != models.PurchaseStatusCredit {
			return fiber.NewError(fiber.StatusBadRequest, "payment_status 'cash' veya 'credit' olmalı")
		}
		if body.PaidAmount < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "paid_amount negatif olamaz")
		}

		branchID, err := auth.RequiredBranchID(c, body.BranchID)
		if err != nil {
			return err
		}

		userID, username, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var totalAmount float64
		items := make([]models.PurchaseItem, 0, len(body.Items))
		for _, it := range body.Items {
			if it.ProductID == 0 || it.Quantity <= 0 || it.CostPrice <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalemlerde product_id, quantity ve cost_price zorunlu ve > 0 olmalı")
			}

			var product models.Product
			if err := database.DB.First(&product, "id = ? AND is_deleted = ?", it.ProductID, false).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ürün bulunamadı: %d", it.ProductID))
			}

			subtotal := float64(it.Quantity) * it.CostPrice
			totalAmount += subtotal
			items = append(items, models.PurchaseItem{
				ProductID:   it.ProductID,
				Name:        product.Name,
				Quantity:    it.Quantity,
				CostPrice:   it.CostPrice,
				RetailPrice: it.RetailPrice,
				Subtotal:    subtotal,
			})
		}

		// Nakit alımda tamamı ödenmiş sayılır
		paid := body.PaidAmount
		if status == models.PurchaseStatusCash {
			paid = totalAmount
		}
		if paid > totalAmount {
			return fiber.NewError(fiber.StatusBadRequest, "paid_amount toplam tutarı aşamaz")
		}

		rec := models.PurchaseRecord{
			BranchID:          branchID,
			SupplierID:        body.SupplierID,
			SupplierInvoiceNo: body.SupplierInvoiceNo,
			TotalAmount:       totalAmount,
			PaidAmount:        paid,
			PaymentStatus:     status,
			Notes:             body.Notes,
			CreatedBy:         userID,
			Items:             items,
		}

		if err := RecordPurchase(database.DB, &rec); err != nil {
			return ledgerError(err, "Alım faturası kaydedilemedi")
		}

		// Audit log yaz
		branchIDForLog := &rec.BranchID
		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    branchIDForLog,
			UserID:      userID,
			UserName:    username,
			EntityType:  "purchase_record",
			EntityID:    rec.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Alım eklendi: %s - %.2f TL (%s)", rec.SupplierName, rec.TotalAmount, rec.PaymentStatus),
			Before:      nil,
			After:       toPurchaseResponse(rec),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toPurchaseResponse(rec))
	}
}

// GET /api/purchases?branch_id=...&supplier_id=...&status=...
func ListPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.PurchaseRecord{}).
			Preload("Items").
			Where("is_deleted = ?", false)

		dbq, err := auth.ScopeToBranch(c, dbq)
		if err != nil {
			return err
		}

		if sidStr := c.Query("supplier_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "supplier_id geçersiz")
			}
			dbq = dbq.Where("supplier_id = ?", sid)
		}

		// paid: kalan 0, outstanding: kalan > 0 (oluşturma anındaki değer üzerinden)
		switch c.Query("status") {
		case "":
		case "cash":
			dbq = dbq.Where("payment_status = ?", models.PurchaseStatusCash)
		case "credit":
			dbq = dbq.Where("payment_status = ?", models.PurchaseStatusCredit)
		case "paid":
			dbq = dbq.Where("remaining_amount <= 0")
		case "outstanding":
			dbq = dbq.Where("remaining_amount > 0")
		default:
			return fiber.NewError(fiber.StatusBadRequest, "status geçersiz")
		}

		var rows []models.PurchaseRecord
		if err := dbq.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alımlar listelenemedi")
		}

		resp := make([]PurchaseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, toPurchaseResponse(r))
		}
		return c.JSON(resp)
	}
}

type CreatePaymentRequest struct {
	SupplierID uint    `json:"supplier_id"`
	PurchaseID *uint   `json:"purchase_id"`
	Amount     float64 `json:"amount"`
	Notes      string  `json:"notes"`
}

type PaymentResponse struct {
	ID         uint    `json:"id"`
	SupplierID uint    `json:"supplier_id"`
	PurchaseID *uint   `json:"purchase_id"`
	Amount     float64 `json:"amount"`
	Notes      string  `json:"notes"`
	CreatedAt  string  `json:"created_at"`
}

// POST /api/supplier-payments
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id zorunlu")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		userID, username, branchID, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		payment := models.SupplierPayment{
			SupplierID:       body.SupplierID,
			PurchaseRecordID: body.PurchaseID,
			Amount:           body.Amount,
			Notes:            body.Notes,
			CreatedBy:        userID,
		}

		if err := RecordPayment(database.DB, &payment); err != nil {
			return ledgerError(err, "Ödeme kaydedilemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    branchID,
			UserID:      userID,
			UserName:    username,
			EntityType:  "supplier_payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Tedarikçi ödemesi: %.2f TL", payment.Amount),
			Before:      nil,
			After: fiber.Map{
				"supplier_id": payment.SupplierID,
				"purchase_id": payment.PurchaseRecordID,
				"amount":      payment.Amount,
			},
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(PaymentResponse{
			ID:         payment.ID,
			SupplierID: payment.SupplierID,
			PurchaseID: payment.PurchaseRecordID,
			Amount:     payment.Amount,
			Notes:      payment.Notes,
			CreatedAt:  payment.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/supplier-payments?supplier_id=...
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SupplierPayment{})

		if sidStr := c.Query("supplier_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "supplier_id geçersiz")
			}
			dbq = dbq.Where("supplier_id = ?", sid)
		}

		var rows []models.SupplierPayment
		if err := dbq.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}

		resp := make([]PaymentResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, PaymentResponse{
				ID:         r.ID,
				SupplierID: r.SupplierID,
				PurchaseID: r.PurchaseRecordID,
				Amount:     r.Amount,
				Notes:      r.Notes,
				CreatedAt:  r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
