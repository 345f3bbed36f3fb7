package supplier

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

type CreateSupplierRequest struct {
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	TaxNumber          string `json:"tax_number"`
	CommercialRegister string `json:"commercial_register"`
}

type DeleteSupplierRequest struct {
	Reason string `json:"reason"`
}

type SupplierResponse struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Phone              string  `json:"phone"`
	TaxNumber          string  `json:"tax_number"`
	CommercialRegister string  `json:"commercial_register"`
	TotalDebt          float64 `json:"total_debt"`
	TotalPaid          float64 `json:"total_paid"`
	TotalSupplied      float64 `json:"total_supplied"`
	CreatedAt          string  `json:"created_at"`
}

func toSupplierResponse(s models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:                 s.ID,
		Name:               s.Name,
		Phone:              s.Phone,
		TaxNumber:          s.TaxNumber,
		CommercialRegister: s.CommercialRegister,
		TotalDebt:          s.TotalDebt,
		TotalPaid:          s.TotalPaid,
		TotalSupplied:      s.TotalSupplied,
		CreatedAt:          s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi adı zorunlu")
		}

		sup := models.Supplier{
			Name:               body.Name,
			Phone:              strings.TrimSpace(body.Phone),
			TaxNumber:          strings.TrimSpace(body.TaxNumber),
			CommercialRegister: strings.TrimSpace(body.CommercialRegister),
		}

		if err := database.DB.Create(&sup).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toSupplierResponse(sup))
	}
}

// GET /api/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.
			Where("is_deleted = ?", false).
			Order("name").
			Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			resp = append(resp, toSupplierResponse(s))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/suppliers/:id
// Bakiyesi sıfır olmayan tedarikçi silinemez; silme arşivlemedir.
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var body DeleteSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Reason = strings.TrimSpace(body.Reason)
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Silme gerekçesi zorunlu")
		}

		var sup models.Supplier
		if err := database.DB.First(&sup, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		if _, err := ArchiveSupplier(database.DB, sup.ID, body.Reason); err != nil {
			return ledgerError(err, "Tedarikçi silinemedi")
		}

		// Audit log yaz
		userID, username, branchID, err := auth.CurrentUser(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    branchID,
				UserID:      userID,
				UserName:    username,
				EntityType:  "supplier",
				EntityID:    sup.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Tedarikçi arşivlendi: %s (%s)", sup.Name, body.Reason),
				Before:      toSupplierResponse(sup),
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
