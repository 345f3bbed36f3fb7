// Package expense şube giderlerini yönetir. Her gider kaydıyla birlikte aynı
// transaction içinde kasaya "out" hareketi işlenir.
package expense

import (
	"errors"
	"fmt"
	"strings"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateExpenseRequest struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	BranchID    *uint   `json:"branch_id"` // merkez için zorunlu
}

type ExpenseResponse struct {
	ID          uint    `json:"id"`
	BranchID    *uint   `json:"branch_id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

func toExpenseResponse(exp models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          exp.ID,
		BranchID:    exp.BranchID,
		Category:    exp.Category,
		Amount:      exp.Amount,
		Description: exp.Description,
		CreatedAt:   exp.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Doğrulama hataları validationErr olarak döner; handler bunları 400'e,
// kalan (DB) hataları 500'e çevirir.
type validationErr struct{ msg string }

func (e validationErr) Error() string { return e.msg }

func invalidf(format string, args ...interface{}) error {
	return validationErr{msg: fmt.Sprintf(format, args...)}
}

// ledgerError - defter hatasını HTTP hatasına çevirir: doğrulama 400, kalanı 500
func ledgerError(err error, fallback string) error {
	var v validationErr
	if errors.As(err, &v) {
		return fiber.NewError(fiber.StatusBadRequest, v.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

// RecordExpense gideri kaydeder ve tutarı kasaya "out" olarak işler.
func RecordExpense(db *gorm.DB, exp *models.Expense) error {
	if exp.Amount <= 0 {
		return invalidf("Tutar 0'dan büyük olmalı")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exp).Error; err != nil {
			return err
		}

		if exp.BranchID != nil {
			log := models.TreasuryLog{
				BranchID:    *exp.BranchID,
				Type:        models.TreasuryOut,
				Source:      models.TreasurySourceExpense,
				ReferenceID: fmt.Sprintf("%d", exp.ID),
				Amount:      exp.Amount,
				Notes:       exp.Category,
				CreatedBy:   exp.CreatedBy,
			}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Category = strings.TrimSpace(body.Category)
		body.Description = strings.TrimSpace(body.Description)
		if body.Category == "" || body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori ve açıklama zorunlu")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar 0'dan büyük olmalı")
		}

		branchID, err := auth.RequiredBranchID(c, body.BranchID)
		if err != nil {
			return err
		}

		userID, username, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		exp := models.Expense{
			BranchID:    &branchID,
			Category:    body.Category,
			Amount:      body.Amount,
			Description: body.Description,
			CreatedBy:   userID,
		}

		if err := RecordExpense(database.DB, &exp); err != nil {
			return ledgerError(err, "Gider kaydedilemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    &branchID,
			UserID:      userID,
			UserName:    username,
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Gider eklendi: %s - %.2f TL", exp.Category, exp.Amount),
			Before:      nil,
			After:       toExpenseResponse(exp),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(exp))
	}
}

// GET /api/expenses?from=...&to=...&category=...
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Expense{})

		dbq, err := auth.ScopeToBranch(c, dbq)
		if err != nil {
			return err
		}

		if from := c.Query("from"); from != "" {
			dbq = dbq.Where("created_at >= ?", from)
		}
		if to := c.Query("to"); to != "" {
			dbq = dbq.Where("created_at <= ?", to+" 23:59:59")
		}
		if cat := strings.TrimSpace(c.Query("category")); cat != "" {
			dbq = dbq.Where("category = ?", cat)
		}

		var rows []models.Expense
		if err := dbq.Order("created_at desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, toExpenseResponse(r))
		}
		return c.JSON(resp)
	}
}
