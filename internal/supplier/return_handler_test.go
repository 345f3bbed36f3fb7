package supplier

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"testing"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/config"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSupplierApp(t *testing.T, db *gorm.DB) (*fiber.App, *config.Config) {
	t.Helper()
	database.DB = db
	cfg := &config.Config{JWTSecret: "test-secret-en-az-otuz-iki-karakter"}

	app := fiber.New()
	app.Use(auth.JWTMiddleware(cfg))
	app.Post("/api/purchase-returns", CreateReturnHandler())
	return app, cfg
}

func bearerFor(t *testing.T, cfg *config.Config, role models.UserRole, branchID *uint) string {
	t.Helper()
	token, err := auth.GenerateToken(cfg.JWTSecret, &models.User{
		ID:       42,
		Username: "E-654321",
		Role:     role,
		BranchID: branchID,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestCreateReturnOtherBranchForbidden(t *testing.T) {
	db := newTestDB(t)
	branch, sup, product := seedSupplierAndProduct(t, db)

	rec := models.PurchaseRecord{
		BranchID:          branch.ID,
		SupplierID:        sup.ID,
		SupplierInvoiceNo: "FTR-2026-777",
		TotalAmount:       1000,
		PaymentStatus:     models.PurchaseStatusCredit,
		Items: []models.PurchaseItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 10, CostPrice: 100, Subtotal: 1000},
		},
	}
	require.NoError(t, RecordPurchase(db, &rec))

	other := models.Branch{Name: "Diğer Şube " + t.Name()}
	require.NoError(t, db.Create(&other).Error)

	app, cfg := newSupplierApp(t, db)

	body := fmt.Sprintf(`{"original_purchase_id":%d,"items":[{"product_id":%d,"quantity":2}],"refund_method":"debt_deduction"}`,
		rec.ID, product.ID)

	// Başka şubenin personeli iade giremez
	req := httptest.NewRequest("POST", "/api/purchase-returns", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleEmployee, &other.ID))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.PurchaseReturn{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 20, gotProduct.Stock)

	// Alımın yapıldığı şubenin personeli girebilir
	req = httptest.NewRequest("POST", "/api/purchase-returns", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleEmployee, &branch.ID))

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.NoError(t, db.Model(&models.PurchaseReturn{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 18, gotProduct.Stock)

	var gotSup models.Supplier
	require.NoError(t, db.First(&gotSup, sup.ID).Error)
	assert.Equal(t, float64(800), gotSup.TotalDebt)
}
