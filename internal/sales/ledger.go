// Package sales satış faturalarını, müşteri iadelerini ve giderleri yönetir.
// Stok ve kasa hareketleri ilgili kayıtla aynı transaction içinde yapılır;
// stok düşümü sıfırın altına inmez.
package sales

import (
	"fmt"
	"time"

	"magaza-backend/internal/models"

	"gorm.io/gorm"
)

// Doğrulama hataları validationErr olarak döner; handler bunları 400'e,
// kalan (DB) hataları 500'e çevirir.
type validationErr struct{ msg string }

func (e validationErr) Error() string { return e.msg }

func invalidf(format string, args ...interface{}) error {
	return validationErr{msg: fmt.Sprintf(format, args...)}
}

// ComputeNetTotal - İskonto uygulanmış net tutarı hesaplar. Sonuç hiçbir
// durumda negatif olmaz.
func ComputeNetTotal(total float64, discountType models.DiscountType, discountValue float64) float64 {
	var net float64
	switch discountType {
	case models.DiscountPercentage:
		net = total * (1 - discountValue/100)
	case models.DiscountFixed:
		net = total - discountValue
	default:
		net = total
	}
	if net < 0 {
		return 0
	}
	return net
}

// RecordInvoice faturayı kaydeder, kalemlerin stoğunu düşer ve net tutarı
// kasaya "in" olarak işler. Stok sıfırın altına inmez.
func RecordInvoice(db *gorm.DB, inv *models.SalesInvoice) error {
	if len(inv.Items) == 0 {
		return invalidf("Fatura en az bir kalem içermeli")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}

		for _, item := range inv.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND is_deleted = ?", item.ProductID, false).
				Update("stock", gorm.Expr("CASE WHEN stock - ? < 0 THEN 0 ELSE stock - ? END", item.Quantity, item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return invalidf("Ürün bulunamadı: %d", item.ProductID)
			}
		}

		if inv.NetTotal > 0 && inv.BranchID != nil {
			log := models.TreasuryLog{
				BranchID:    *inv.BranchID,
				Type:        models.TreasuryIn,
				Source:      models.TreasurySourceSale,
				ReferenceID: fmt.Sprintf("%d", inv.ID),
				Amount:      inv.NetTotal,
				Notes:       "Satış faturası",
				CreatedBy:   inv.CreatedBy,
			}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// ArchiveInvoice faturayı zorunlu gerekçe ile arşivler ve kalemlerin stoğunu
// aynı transaction içinde geri yükler.
func ArchiveInvoice(db *gorm.DB, invoiceID uint, reason string) (*models.SalesInvoice, error) {
	var inv models.SalesInvoice

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&inv, "id = ? AND is_deleted = ?", invoiceID, false).Error; err != nil {
			return invalidf("Fatura bulunamadı")
		}

		now := time.Now()
		if err := tx.Model(&inv).Updates(map[string]interface{}{
			"is_deleted":      true,
			"deletion_reason": reason,
			"deletion_time":   &now,
		}).Error; err != nil {
			return err
		}

		for _, item := range inv.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// RecordSalesReturn müşteri iadesini kaydeder, kalemleri stoğa geri ekler ve
// nakit iade tutarını kasaya "out" olarak işler.
func RecordSalesReturn(db *gorm.DB, ret *models.SalesReturn) error {
	if len(ret.Items) == 0 {
		return invalidf("İade en az bir kalem içermeli")
	}
	if ret.TotalRefund <= 0 {
		return invalidf("İade tutarı 0'dan büyük olmalı")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if ret.InvoiceID != nil {
			var inv models.SalesInvoice
			if err := tx.First(&inv, "id = ?", *ret.InvoiceID).Error; err != nil {
				return invalidf("Bağlı fatura bulunamadı")
			}
		}

		if err := tx.Create(ret).Error; err != nil {
			return err
		}

		for _, item := range ret.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		if ret.BranchID != nil {
			log := models.TreasuryLog{
				BranchID:    *ret.BranchID,
				Type:        models.TreasuryOut,
				Source:      models.TreasurySourceSalesReturn,
				ReferenceID: fmt.Sprintf("%d", ret.ID),
				Amount:      ret.TotalRefund,
				Notes:       "Müşteri iadesi",
				CreatedBy:   ret.CreatedBy,
			}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
