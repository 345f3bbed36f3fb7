package sales

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

func seedBranchAndProduct(t *testing.T, db *gorm.DB, stock int) (models.Branch, models.Product) {
	t.Helper()
	branch := models.Branch{Name: "Şube " + t.Name()}
	require.NoError(t, db.Create(&branch).Error)

	product := models.Product{
		BranchID:       &branch.ID,
		Code:           "731204",
		Name:           "Çay 500g",
		WholesalePrice: 50,
		RetailPrice:    75,
		Stock:          stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return branch, product
}

func TestComputeNetTotal(t *testing.T) {
	assert.Equal(t, float64(900), ComputeNetTotal(1000, models.DiscountPercentage, 10))
	assert.Equal(t, float64(850), ComputeNetTotal(1000, models.DiscountFixed, 150))
	assert.Equal(t, float64(1000), ComputeNetTotal(1000, models.DiscountPercentage, 0))

	// Net toplam negatif olamaz
	assert.Equal(t, float64(0), ComputeNetTotal(100, models.DiscountFixed, 250))
	assert.Equal(t, float64(0), ComputeNetTotal(0, models.DiscountPercentage, 50))
}

func TestRecordInvoiceDeductsStockAndWritesTreasury(t *testing.T) {
	db := newTestDB(t)
	branch, product := seedBranchAndProduct(t, db, 10)

	inv := models.SalesInvoice{
		BranchID:            &branch.ID,
		TotalBeforeDiscount: 300,
		DiscountType:        models.DiscountPercentage,
		DiscountValue:       10,
		NetTotal:            270,
		Items: []models.SalesInvoiceItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 4, UnitPrice: 75, Subtotal: 300},
		},
	}
	require.NoError(t, RecordInvoice(db, &inv))

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 6, gotProduct.Stock)

	var log models.TreasuryLog
	require.NoError(t, db.First(&log, "source = ?", models.TreasurySourceSale).Error)
	assert.Equal(t, models.TreasuryIn, log.Type)
	assert.Equal(t, float64(270), log.Amount)
	assert.Equal(t, branch.ID, log.BranchID)
}

func TestRecordInvoiceStockFlooredAtZero(t *testing.T) {
	db := newTestDB(t)
	branch, product := seedBranchAndProduct(t, db, 2)

	inv := models.SalesInvoice{
		BranchID: &branch.ID,
		NetTotal: 375,
		Items: []models.SalesInvoiceItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 5, UnitPrice: 75, Subtotal: 375},
		},
	}
	require.NoError(t, RecordInvoice(db, &inv))

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 0, gotProduct.Stock)
}

func TestArchiveInvoiceRestoresStock(t *testing.T) {
	db := newTestDB(t)
	branch, product := seedBranchAndProduct(t, db, 10)

	inv := models.SalesInvoice{
		BranchID: &branch.ID,
		NetTotal: 225,
		Items: []models.SalesInvoiceItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 3, UnitPrice: 75, Subtotal: 225},
		},
	}
	require.NoError(t, RecordInvoice(db, &inv))

	archived, err := ArchiveInvoice(db, inv.ID, "Yanlış kesilen fatura")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, archived.ID)

	var gotInv models.SalesInvoice
	require.NoError(t, db.First(&gotInv, inv.ID).Error)
	assert.True(t, gotInv.IsDeleted)
	assert.Equal(t, "Yanlış kesilen fatura", gotInv.DeletionReason)
	require.NotNil(t, gotInv.DeletionTime)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 10, gotProduct.Stock)

	// Arşivlenmiş fatura ikinci kez arşivlenemez
	_, err = ArchiveInvoice(db, inv.ID, "tekrar")
	require.Error(t, err)
}

func TestRecordSalesReturnRestoresStockAndWritesTreasuryOut(t *testing.T) {
	db := newTestDB(t)
	branch, product := seedBranchAndProduct(t, db, 5)

	ret := models.SalesReturn{
		BranchID:    &branch.ID,
		TotalRefund: 150,
		Items: []models.SalesReturnItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 2, UnitPrice: 75, Subtotal: 150},
		},
	}
	require.NoError(t, RecordSalesReturn(db, &ret))

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 7, gotProduct.Stock)

	var log models.TreasuryLog
	require.NoError(t, db.First(&log, "source = ?", models.TreasurySourceSalesReturn).Error)
	assert.Equal(t, models.TreasuryOut, log.Type)
	assert.Equal(t, float64(150), log.Amount)
}

func TestRecordSalesReturnValidation(t *testing.T) {
	db := newTestDB(t)
	branch, product := seedBranchAndProduct(t, db, 5)

	// Kalemsiz iade
	err := RecordSalesReturn(db, &models.SalesReturn{BranchID: &branch.ID, TotalRefund: 100})
	require.Error(t, err)

	// Tutarsız iade
	err = RecordSalesReturn(db, &models.SalesReturn{
		BranchID: &branch.ID,
		Items:    []models.SalesReturnItem{{ProductID: product.ID, Name: product.Name, Quantity: 1, UnitPrice: 75, Subtotal: 75}},
	})
	require.Error(t, err)

	// Olmayan faturaya bağlı iade
	badID := uint(9999)
	err = RecordSalesReturn(db, &models.SalesReturn{
		BranchID:    &branch.ID,
		InvoiceID:   &badID,
		TotalRefund: 75,
		Items:       []models.SalesReturnItem{{ProductID: product.ID, Name: product.Name, Quantity: 1, UnitPrice: 75, Subtotal: 75}},
	})
	require.Error(t, err)
}
