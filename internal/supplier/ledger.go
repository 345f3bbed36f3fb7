package supplier

import (
	"fmt"

	"magaza-backend/internal/models"

	"gorm.io/gorm"
)

// Tedarikçi defteri: alım, ödeme ve iade olayları tedarikçi toplamlarını
// (total_debt / total_paid / total_supplied) değiştirir. Bütün mutasyonlar tek
// transaction içinde ve "kolon = kolon + ?" ifadeleriyle yapılır; önce okuyup
// sonra yazma yok. Aynı tedarikçiye eşzamanlı iki ödeme satır düzeyinde sıraya
// girer, güncelleme kaybolmaz.
//
// Doğrulama hataları validationErr olarak döner; handler bunları 400'e,
// kalan (DB) hataları 500'e çevirir.

type validationErr struct{ msg string }

func (e validationErr) Error() string { return e.msg }

func invalidf(format string, args ...interface{}) error {
	return validationErr{msg: fmt.Sprintf(format, args...)}
}

// RecordPurchase - Alım faturasını kalemleriyle kaydeder, ürün stoklarını
// artırır ve tedarikçi toplamlarını günceller. remaining_amount bu noktada bir
// kez hesaplanır ve sonraki ödemelerde değişmez.
func RecordPurchase(db *gorm.DB, rec *models.PurchaseRecord) error {
	if len(rec.Items) == 0 {
		return invalidf("en az bir kalem girilmeli")
	}
	if rec.SupplierInvoiceNo == "" {
		return invalidf("tedarikçi fatura no zorunlu")
	}

	rec.RemainingAmount = rec.TotalAmount - rec.PaidAmount

	return db.Transaction(func(tx *gorm.DB) error {
		var sup models.Supplier
		if err := tx.First(&sup, "id = ? AND is_deleted = ?", rec.SupplierID, false).Error; err != nil {
			return invalidf("tedarikçi bulunamadı")
		}
		rec.SupplierName = sup.Name

		if err := tx.Create(rec).Error; err != nil {
			return err
		}

		for _, item := range rec.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND is_deleted = ?", item.ProductID, false).
				Update("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return invalidf("ürün bulunamadı: %s", item.Name)
			}
		}

		return tx.Model(&models.Supplier{}).
			Where("id = ?", rec.SupplierID).
			Updates(map[string]interface{}{
				"total_supplied": gorm.Expr("total_supplied + ?", rec.TotalAmount),
				"total_paid":     gorm.Expr("total_paid + ?", rec.PaidAmount),
				"total_debt":     gorm.Expr("total_debt + ?", rec.TotalAmount-rec.PaidAmount),
			}).Error
	})
}

// RecordPayment - Tedarikçiye borç ödemesi. Ödeme satırı yazılır, toplamlar
// atomik güncellenir. Faturaya bağlı ödemede bile faturanın remaining_amount
// alanı YENİDEN YAZILMAZ; güncel borç tedarikçi toplamıdır.
func RecordPayment(db *gorm.DB, payment *models.SupplierPayment) error {
	if payment.Amount <= 0 {
		return invalidf("tutar 0'dan büyük olmalı")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var sup models.Supplier
		if err := tx.First(&sup, "id = ? AND is_deleted = ?", payment.SupplierID, false).Error; err != nil {
			return invalidf("tedarikçi bulunamadı")
		}

		if payment.PurchaseRecordID != nil {
			var purchase models.PurchaseRecord
			if err := tx.First(&purchase, "id = ? AND supplier_id = ?", *payment.PurchaseRecordID, payment.SupplierID).Error; err != nil {
				return invalidf("alım faturası bulunamadı")
			}
		}

		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Supplier{}).
			Where("id = ?", payment.SupplierID).
			Updates(map[string]interface{}{
				"total_paid": gorm.Expr("total_paid + ?", payment.Amount),
				"total_debt": gorm.Expr("total_debt - ?", payment.Amount),
			}).Error
	})
}

// RecordReturn - Tedarikçiye mal iadesi. Kalem miktarları orijinal faturadaki
// miktara karşı sunucu tarafında doğrulanır; önceki iadeler de sayılır, böylece
// iki iade üst üste orijinal miktarı aşamaz. Stok her kalem için düşülür.
// Mali taraf iki yoldan tam olarak birine gider:
//   - borçtan düşme (veya nakit ama para henüz alınmadı): tedarikçi borcu azalır
//   - nakit ve para alındı: kasaya "in" kaydı, borç değişmez
func RecordReturn(db *gorm.DB, ret *models.PurchaseReturn) error {
	if len(ret.Items) == 0 {
		return invalidf("en az bir kalem girilmeli")
	}
	if ret.TotalRefund <= 0 {
		return invalidf("iade tutarı 0'dan büyük olmalı")
	}
	if ret.RefundMethod != models.RefundMethodCash && ret.RefundMethod != models.RefundMethodDebtDeduction {
		return invalidf("iade yöntemi geçersiz")
	}
	// Borçtan düşmede "para alındı" anlamsız
	if ret.RefundMethod == models.RefundMethodDebtDeduction {
		ret.IsMoneyReceived = false
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var original models.PurchaseRecord
		if err := tx.Preload("Items").
			First(&original, "id = ? AND is_deleted = ?", ret.OriginalPurchaseID, false).Error; err != nil {
			return invalidf("orijinal alım faturası bulunamadı")
		}
		if original.SupplierID != ret.SupplierID {
			return invalidf("fatura bu tedarikçiye ait değil")
		}

		// Aynı faturadaki önceki iadelerin kalem toplamları
		alreadyReturned := make(map[uint]int)
		var priorItems []models.PurchaseReturnItem
		if err := tx.
			Joins("JOIN purchase_returns ON purchase_returns.id = purchase_return_items.purchase_return_id").
			Where("purchase_returns.original_purchase_id = ?", ret.OriginalPurchaseID).
			Find(&priorItems).Error; err != nil {
			return err
		}
		for _, it := range priorItems {
			alreadyReturned[it.ProductID] += it.Quantity
		}

		purchasedQty := make(map[uint]int)
		for _, it := range original.Items {
			purchasedQty[it.ProductID] += it.Quantity
		}

		for _, it := range ret.Items {
			if it.Quantity <= 0 {
				return invalidf("iade miktarı 0'dan büyük olmalı: %s", it.Name)
			}
			remaining := purchasedQty[it.ProductID] - alreadyReturned[it.ProductID]
			if it.Quantity > remaining {
				return invalidf("iade miktarı alınan miktarı aşıyor: %s", it.Name)
			}
		}

		if err := tx.Create(ret).Error; err != nil {
			return err
		}

		for _, it := range ret.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				Update("stock", gorm.Expr("stock - ?", it.Quantity)).Error; err != nil {
				return err
			}
		}

		if ret.RefundMethod == models.RefundMethodDebtDeduction ||
			(ret.RefundMethod == models.RefundMethodCash && !ret.IsMoneyReceived) {
			return tx.Model(&models.Supplier{}).
				Where("id = ?", ret.SupplierID).
				Update("total_debt", gorm.Expr("total_debt - ?", ret.TotalRefund)).Error
		}

		// Nakit alındı: kasaya giriş
		entry := models.TreasuryLog{
			BranchID:    ret.BranchID,
			Type:        models.TreasuryIn,
			Source:      models.TreasurySourcePurchaseReturn,
			ReferenceID: fmt.Sprintf("%d", ret.ID),
			Amount:      ret.TotalRefund,
			Notes:       fmt.Sprintf("Alım iadesi nakit tahsilatı (fatura #%d)", ret.OriginalPurchaseID),
			CreatedBy:   ret.CreatedBy,
		}
		return tx.Create(&entry).Error
	})
}

// ArchiveSupplier - Tedarikçiyi zorunlu gerekçe ile arşivler. Bakiyesi sıfır
// olmayan tedarikçi arşivlenemez; önce hesap kapatılır.
func ArchiveSupplier(db *gorm.DB, supplierID uint, reason string) (*models.Supplier, error) {
	var sup models.Supplier
	if err := db.First(&sup, "id = ? AND is_deleted = ?", supplierID, false).Error; err != nil {
		return nil, invalidf("tedarikçi bulunamadı")
	}
	if sup.TotalDebt != 0 {
		return nil, invalidf("Bekleyen bakiye (%v) olan tedarikçi silinemez, önce hesap kapatılmalı", sup.TotalDebt)
	}

	if err := db.Model(&sup).Updates(map[string]interface{}{
		"is_deleted":      true,
		"deletion_reason": reason,
	}).Error; err != nil {
		return nil, err
	}
	sup.IsDeleted = true
	sup.DeletionReason = reason
	return &sup, nil
}
