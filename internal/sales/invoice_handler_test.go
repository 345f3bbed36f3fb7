package sales

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

func newSalesApp(t *testing.T, db *gorm.DB) (*fiber.App, *config.Config) {
	t.Helper()
	database.DB = db
	cfg := &config.Config{JWTSecret: "test-secret-en-az-otuz-iki-karakter"}

	app := fiber.New()
	app.Use(auth.JWTMiddleware(cfg))
	app.Get("/api/sales", ListInvoicesHandler())
	app.Delete("/api/sales/:id", DeleteInvoiceHandler())
	return app, cfg
}

func bearerFor(t *testing.T, cfg *config.Config, role models.UserRole, branchID *uint) string {
	t.Helper()
	token, err := auth.GenerateToken(cfg.JWTSecret, &models.User{
		ID:       42,
		Username: "E-123456",
		Role:     role,
		BranchID: branchID,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestDeleteInvoiceOtherBranchForbidden(t *testing.T) {
	db := newTestDB(t)
	branch, product := seedBranchAndProduct(t, db, 10)

	inv := models.SalesInvoice{
		BranchID:            &branch.ID,
		TotalBeforeDiscount: 150,
		NetTotal:            150,
		CreatedBy:           1,
		Items: []models.SalesInvoiceItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 2, UnitPrice: 75, Subtotal: 150},
		},
	}
	require.NoError(t, RecordInvoice(db, &inv))

	other := models.Branch{Name: "Diğer Şube " + t.Name()}
	require.NoError(t, db.Create(&other).Error)

	app, cfg := newSalesApp(t, db)

	// Başka şubenin personeli faturayı arşivleyemez
	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/sales/%d", inv.ID),
		bytes.NewBufferString(`{"reason":"hatalı kesim"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleEmployee, &other.ID))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var gotInv models.SalesInvoice
	require.NoError(t, db.First(&gotInv, inv.ID).Error)
	assert.False(t, gotInv.IsDeleted)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 8, gotProduct.Stock)

	// Kendi şubesinin personeli arşivleyebilir
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/sales/%d", inv.ID),
		bytes.NewBufferString(`{"reason":"hatalı kesim"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleEmployee, &branch.ID))

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	require.NoError(t, db.First(&gotInv, inv.ID).Error)
	assert.True(t, gotInv.IsDeleted)
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 10, gotProduct.Stock)
}

func TestListInvoicesArchiveViewHeadOfficeOnly(t *testing.T) {
	db := newTestDB(t)
	branch, product := seedBranchAndProduct(t, db, 10)

	inv := models.SalesInvoice{
		BranchID:            &branch.ID,
		TotalBeforeDiscount: 75,
		NetTotal:            75,
		CreatedBy:           1,
		Items: []models.SalesInvoiceItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 1, UnitPrice: 75, Subtotal: 75},
		},
	}
	require.NoError(t, RecordInvoice(db, &inv))
	_, err := ArchiveInvoice(db, inv.ID, "test arşivi")
	require.NoError(t, err)

	app, cfg := newSalesApp(t, db)

	// Şube personeli arşiv görünümünü açamaz
	req := httptest.NewRequest("GET", "/api/sales?include_deleted=true", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleEmployee, &branch.ID))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Merkez açabilir
	req = httptest.NewRequest("GET", "/api/sales?include_deleted=true", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleAdmin, nil))

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
