package supplier

import (
	"fmt"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReturnItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateReturnRequest struct {
	OriginalPurchaseID uint                `json:"original_purchase_id"`
	Items              []ReturnItemRequest `json:"items"`
	RefundMethod       string              `json:"refund_method"` // "cash" | "debt_deduction"
	IsMoneyReceived    bool                `json:"is_money_received"`
	Notes              string              `json:"notes"`
}

type ReturnItemResponse struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	CostPrice float64 `json:"cost_price"`
	Subtotal  float64 `json:"subtotal"`
}

type ReturnResponse struct {
	ID                 uint                 `json:"id"`
	BranchID           uint                 `json:"branch_id"`
	OriginalPurchaseID uint                 `json:"original_purchase_id"`
	SupplierID         uint                 `json:"supplier_id"`
	Items              []ReturnItemResponse `json:"items"`
	TotalRefund        float64              `json:"total_refund"`
	RefundMethod       string               `json:"refund_method"`
	IsMoneyReceived    bool                 `json:"is_money_received"`
	Notes              string               `json:"notes"`
	CreatedAt          string               `json:"created_at"`
}

func toReturnResponse(r models.PurchaseReturn) ReturnResponse {
	items := make([]ReturnItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ReturnItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			CostPrice: it.CostPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return ReturnResponse{
		ID:                 r.ID,
		BranchID:           r.BranchID,
		OriginalPurchaseID: r.OriginalPurchaseID,
		SupplierID:         r.SupplierID,
		Items:              items,
		TotalRefund:        r.TotalRefund,
		RefundMethod:       string(r.RefundMethod),
		IsMoneyReceived:    r.IsMoneyReceived,
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/purchase-returns
// İade kalemleri orijinal faturanın kalemlerinden, birim fiyatlar alım maliyetinden gelir.
func CreateReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateReturnRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.OriginalPurchaseID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "original_purchase_id zorunlu")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir kalem girilmeli")
		}

		userID, username, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var original models.PurchaseRecord
		if err := database.DB.Preload("Items").
			First(&original, "id = ? AND is_deleted = ?", body.OriginalPurchaseID, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Orijinal alım faturası bulunamadı")
		}

		// Şube personeli başka şubenin alımına iade giremez
		if err := auth.RequireSameBranch(c, &original.BranchID); err != nil {
			return err
		}

		costByProduct := make(map[uint]models.PurchaseItem)
		for _, it := range original.Items {
			costByProduct[it.ProductID] = it
		}

		var totalRefund float64
		items := make([]models.PurchaseReturnItem, 0, len(body.Items))
		for _, it := range body.Items {
			orig, ok := costByProduct[it.ProductID]
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Kalem orijinal faturada yok: %d", it.ProductID))
			}
			if it.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "İade miktarı 0'dan büyük olmalı")
			}

			subtotal := float64(it.Quantity) * orig.CostPrice
			totalRefund += subtotal
			items = append(items, models.PurchaseReturnItem{
				ProductID: it.ProductID,
				Name:      orig.Name,
				Quantity:  it.Quantity,
				CostPrice: orig.CostPrice,
				Subtotal:  subtotal,
			})
		}

		ret := models.PurchaseReturn{
			BranchID:           original.BranchID,
			OriginalPurchaseID: original.ID,
			SupplierID:         original.SupplierID,
			TotalRefund:        totalRefund,
			RefundMethod:       models.RefundMethod(body.RefundMethod),
			IsMoneyReceived:    body.IsMoneyReceived,
			Notes:              body.Notes,
			CreatedBy:          userID,
			Items:              items,
		}

		if err := RecordReturn(database.DB, &ret); err != nil {
			return ledgerError(err, "İade kaydedilemedi")
		}

		branchIDForLog := &ret.BranchID
		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    branchIDForLog,
			UserID:      userID,
			UserName:    username,
			EntityType:  "purchase_return",
			EntityID:    ret.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Alım iadesi: fatura #%d - %.2f TL (%s)", ret.OriginalPurchaseID, ret.TotalRefund, ret.RefundMethod),
			Before:      nil,
			After:       toReturnResponse(ret),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toReturnResponse(ret))
	}
}

// GET /api/purchase-returns?supplier_id=...
func ListReturnsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.PurchaseReturn{}).Preload("Items")

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

		var rows []models.PurchaseReturn
		if err := dbq.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İadeler listelenemedi")
		}

		resp := make([]ReturnResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, toReturnResponse(r))
		}
		return c.JSON(resp)
	}
}
