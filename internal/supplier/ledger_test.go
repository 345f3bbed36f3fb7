package supplier

import (
	"strings"
	"testing"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedSupplierAndProduct(t *testing.T, db *gorm.DB) (models.Branch, models.Supplier, models.Product) {
	t.Helper()
	branch := models.Branch{Name: "Merkez Şube " + t.Name()}
	require.NoError(t, db.Create(&branch).Error)

	sup := models.Supplier{Name: "Anadolu Gıda"}
	require.NoError(t, db.Create(&sup).Error)

	product := models.Product{
		BranchID:       &branch.ID,
		Code:           "482913",
		Name:           "Zeytinyağı 1L",
		WholesalePrice: 80,
		RetailPrice:    120,
		Stock:          10,
	}
	require.NoError(t, db.Create(&product).Error)

	return branch, sup, product
}

func TestRecordPurchaseUpdatesTotalsAndStock(t *testing.T) {
	db := newTestDB(t)
	branch, sup, product := seedSupplierAndProduct(t, db)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-001",
		TotalAmount:       1000,
		PaidAmount:        200,
		PaymentStatus:     models.PurchaseStatusCredit,
		Items: []models.PurchaseItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 10, CostPrice: 100, Subtotal: 1000},
		},
	}
	require.NoError(t, RecordPurchase(db, &rec))

	// remaining_amount oluşturma anında bir kez hesaplanır
	assert.Equal(t, float64(800), rec.RemainingAmount)
	assert.Equal(t, sup.Name, rec.SupplierName)

	var gotSup models.Supplier
	require.NoError(t, db.First(&gotSup, sup.ID).Error)
	assert.Equal(t, float64(1000), gotSup.TotalSupplied)
	assert.Equal(t, float64(200), gotSup.TotalPaid)
	assert.Equal(t, float64(800), gotSup.TotalDebt)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 20, gotProduct.Stock)
}

func TestRecordPurchaseRejectsUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	branch, sup, _ := seedSupplierAndProduct(t, db)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-002",
		TotalAmount:       100,
		PaymentStatus:     models.PurchaseStatusCash,
		Items: []models.PurchaseItem{
			{ProductID: 9999, Name: "Olmayan Ürün", Quantity: 1, CostPrice: 100, Subtotal: 100},
		},
	}
	require.Error(t, RecordPurchase(db, &rec))

	// Transaction geri alındı: tedarikçi toplamları değişmedi
	var gotSup models.Supplier
	require.NoError(t, db.First(&gotSup, sup.ID).Error)
	assert.Zero(t, gotSup.TotalSupplied)
	assert.Zero(t, gotSup.TotalDebt)
}

func TestRecordPaymentDoesNotRewriteRemainingAmount(t *testing.T) {
	db := newTestDB(t)
	branch, sup, product := seedSupplierAndProduct(t, db)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-003",
		TotalAmount:       1000,
		PaidAmount:        200,
		PaymentStatus:     models.PurchaseStatusCredit,
		Items: []models.PurchaseItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 10, CostPrice: 100, Subtotal: 1000},
		},
	}
	require.NoError(t, RecordPurchase(db, &rec))

	payment := models.SupplierPayment{
		SupplierID:       sup.ID,
		PurchaseRecordID: &rec.ID,
		Amount:           300,
	}
	require.NoError(t, RecordPayment(db, &payment))

	var gotSup models.Supplier
	require.NoError(t, db.First(&gotSup, sup.ID).Error)
	assert.Equal(t, float64(500), gotSup.TotalPaid)
	assert.Equal(t, float64(500), gotSup.TotalDebt)

	// Fatura üzerindeki remaining_amount hala oluşturma anındaki değer
	var gotRec models.PurchaseRecord
	require.NoError(t, db.First(&gotRec, rec.ID).Error)
	assert.Equal(t, float64(800), gotRec.RemainingAmount)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	_, sup, _ := seedSupplierAndProduct(t, db)

	err := RecordPayment(db, &models.SupplierPayment{SupplierID: sup.ID, Amount: 0})
	require.Error(t, err)

	err = RecordPayment(db, &models.SupplierPayment{SupplierID: sup.ID, Amount: -50})
	require.Error(t, err)
}

func TestRecordReturnDebtDeduction(t *testing.T) {
	db := newTestDB(t)
	branch, sup, product := seedSupplierAndProduct(t, db)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-004",
		TotalAmount:       1000,
		PaymentStatus:     models.PurchaseStatusCredit,
		Items: []models.PurchaseItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 10, CostPrice: 100, Subtotal: 1000},
		},
	}
	require.NoError(t, RecordPurchase(db, &rec))

	ret := models.PurchaseReturn{
		BranchID:           branch.ID,
		OriginalPurchaseID: rec.ID,
		SupplierID:         sup.ID,
		TotalRefund:        300,
		RefundMethod:       models.RefundMethodDebtDeduction,
		IsMoneyReceived:    true, // borçtan düşmede yok sayılır
		Items: []models.PurchaseReturnItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 3, CostPrice: 100, Subtotal: 300},
		},
	}
	require.NoError(t, RecordReturn(db, &ret))
	assert.False(t, ret.IsMoneyReceived)

	var gotSup models.Supplier
	require.NoError(t, db.First(&gotSup, sup.ID).Error)
	assert.Equal(t, float64(700), gotSup.TotalDebt)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 17, gotProduct.Stock) // 10 + 10 alım - 3 iade

	// Borçtan düşmede kasa kaydı atılmaz
	var logCount int64
	require.NoError(t, db.Model(&models.TreasuryLog{}).Count(&logCount).Error)
	assert.Zero(t, logCount)
}

func TestRecordReturnCashReceivedWritesTreasuryIn(t *testing.T) {
	db := newTestDB(t)
	branch, sup, product := seedSupplierAndProduct(t, db)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-005",
		TotalAmount:       1000,
		PaidAmount:        1000,
		PaymentStatus:     models.PurchaseStatusCash,
		Items: []models.PurchaseItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 10, CostPrice: 100, Subtotal: 1000},
		},
	}
	require.NoError(t, RecordPurchase(db, &rec))

	ret := models.PurchaseReturn{
		BranchID:           branch.ID,
		OriginalPurchaseID: rec.ID,
		SupplierID:         sup.ID,
		TotalRefund:        200,
		RefundMethod:       models.RefundMethodCash,
		IsMoneyReceived:    true,
		Items: []models.PurchaseReturnItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 2, CostPrice: 100, Subtotal: 200},
		},
	}
	require.NoError(t, RecordReturn(db, &ret))

	// Borç değişmedi, kasaya giriş yazıldı
	var gotSup models.Supplier
	require.NoError(t, db.First(&gotSup, sup.ID).Error)
	assert.Zero(t, gotSup.TotalDebt)

	var log models.TreasuryLog
	require.NoError(t, db.First(&log, "source = ?", models.TreasurySourcePurchaseReturn).Error)
	assert.Equal(t, models.TreasuryIn, log.Type)
	assert.Equal(t, float64(200), log.Amount)
	assert.Equal(t, branch.ID, log.BranchID)
}

func TestRecordReturnCumulativeQuantityGuard(t *testing.T) {
	db := newTestDB(t)
	branch, sup, product := seedSupplierAndProduct(t, db)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-006",
		TotalAmount:       1000,
		PaymentStatus:     models.PurchaseStatusCredit,
		Items: []models.PurchaseItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 10, CostPrice: 100, Subtotal: 1000},
		},
	}
	require.NoError(t, RecordPurchase(db, &rec))

	first := models.PurchaseReturn{
		BranchID:           branch.ID,
		OriginalPurchaseID: rec.ID,
		SupplierID:         sup.ID,
		TotalRefund:        600,
		RefundMethod:       models.RefundMethodDebtDeduction,
		Items: []models.PurchaseReturnItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 6, CostPrice: 100, Subtotal: 600},
		},
	}
	require.NoError(t, RecordReturn(db, &first))

	// İkinci iade kalan 4 adedi aşıyor
	second := models.PurchaseReturn{
		BranchID:           branch.ID,
		OriginalPurchaseID: rec.ID,
		SupplierID:         sup.ID,
		TotalRefund:        500,
		RefundMethod:       models.RefundMethodDebtDeduction,
		Items: []models.PurchaseReturnItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 5, CostPrice: 100, Subtotal: 500},
		},
	}
	err := RecordReturn(db, &second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aşıyor")

	// Kalan 4 adetlik iade geçer
	third := models.PurchaseReturn{
		BranchID:           branch.ID,
		OriginalPurchaseID: rec.ID,
		SupplierID:         sup.ID,
		TotalRefund:        400,
		RefundMethod:       models.RefundMethodDebtDeduction,
		Items: []models.PurchaseReturnItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 4, CostPrice: 100, Subtotal: 400},
		},
	}
	require.NoError(t, RecordReturn(db, &third))
}

func TestRecordReturnRejectsWrongSupplier(t *testing.T) {
	db := newTestDB(t)
	branch, sup, product := seedSupplierAndProduct(t, db)

	other := models.Supplier{Name: "Başka Tedarikçi"}
	require.NoError(t, db.Create(&other).Error)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-007",
		TotalAmount:       500,
		PaymentStatus:     models.PurchaseStatusCredit,
		Items: []models.PurchaseItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 5, CostPrice: 100, Subtotal: 500},
		},
	}
	require.NoError(t, RecordPurchase(db, &rec))

	ret := models.PurchaseReturn{
		BranchID:           branch.ID,
		OriginalPurchaseID: rec.ID,
		SupplierID:         other.ID,
		TotalRefund:        100,
		RefundMethod:       models.RefundMethodDebtDeduction,
		Items: []models.PurchaseReturnItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 1, CostPrice: 100, Subtotal: 100},
		},
	}
	require.Error(t, RecordReturn(db, &ret))
}

func TestArchiveSupplierDebtGuard(t *testing.T) {
	db := newTestDB(t)
	_, sup, _ := seedSupplierAndProduct(t, db)

	require.NoError(t, db.Model(&models.Supplier{}).Where("id = ?", sup.ID).
		Update("total_debt", 500).Error)

	_, err := ArchiveSupplier(db, sup.ID, "artık çalışılmıyor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bakiye")

	// Kayıt olduğu gibi kalır
	var got models.Supplier
	require.NoError(t, db.First(&got, sup.ID).Error)
	assert.False(t, got.IsDeleted)
	assert.Empty(t, got.DeletionReason)
	assert.Equal(t, float64(500), got.TotalDebt)
}

func TestArchiveSupplierZeroDebt(t *testing.T) {
	db := newTestDB(t)
	_, sup, _ := seedSupplierAndProduct(t, db)

	archived, err := ArchiveSupplier(db, sup.ID, "artık çalışılmıyor")
	require.NoError(t, err)
	assert.True(t, archived.IsDeleted)

	var got models.Supplier
	require.NoError(t, db.First(&got, sup.ID).Error)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, "artık çalışılmıyor", got.DeletionReason)

	// İkinci arşivleme denemesi kayıt bulamaz
	_, err = ArchiveSupplier(db, sup.ID, "tekrar")
	require.Error(t, err)
}
