package staff

import (
	"errors"
	"fmt"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreatePaymentRequest struct {
	UserID      uint    `json:"user_id"`
	PaymentType string  `json:"payment_type"` // salary | bonus | advance | deduction
	Amount      float64 `json:"amount"`
	PaymentDate *string `json:"payment_date"` // "2026-08-30", boşsa bugün
	Notes       string  `json:"notes"`
}

type PaymentResponse struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	Username    string  `json:"username"`
	FullName    string  `json:"full_name"`
	BranchID    *uint   `json:"branch_id"`
	PaymentType string  `json:"payment_type"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Notes       string  `json:"notes"`
}

func toPaymentResponse(p models.StaffPayment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Username:    p.User.Username,
		FullName:    p.User.FullName,
		BranchID:    p.BranchID,
		PaymentType: string(p.PaymentType),
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Notes:       p.Notes,
	}
}

func validPaymentType(t models.StaffPaymentType) bool {
	switch t {
	case models.StaffPaymentSalary, models.StaffPaymentBonus,
		models.StaffPaymentAdvance, models.StaffPaymentDeduction:
		return true
	}
	return false
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

// RecordPayment ödemeyi kaydeder. Kesinti dışındaki tüm tipler personelin
// şubesinin kasasından "out" hareketi düşer; kesinti kasayı etkilemez.
func RecordPayment(db *gorm.DB, payment *models.StaffPayment) error {
	if payment.Amount <= 0 {
		return invalidf("Tutar 0'dan büyük olmalı")
	}
	if !validPaymentType(payment.PaymentType) {
		return invalidf("payment_type geçersiz")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", payment.UserID).Error; err != nil {
			return invalidf("Personel bulunamadı")
		}
		payment.BranchID = user.BranchID
		payment.User = user

		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		if payment.PaymentType != models.StaffPaymentDeduction && payment.BranchID != nil {
			log := models.TreasuryLog{
				BranchID:    *payment.BranchID,
				Type:        models.TreasuryOut,
				Source:      models.TreasurySourceStaffPayment,
				ReferenceID: fmt.Sprintf("%d", payment.ID),
				Amount:      payment.Amount,
				Notes:       fmt.Sprintf("Personel ödemesi: %s (%s)", user.FullName, payment.PaymentType),
				CreatedBy:   payment.CreatedBy,
			}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// POST /api/staff-payments
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.UserID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "user_id zorunlu")
		}

		paymentDate := time.Now()
		if body.PaymentDate != nil && *body.PaymentDate != "" {
			d, err := time.Parse("2006-01-02", *body.PaymentDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			paymentDate = d
		}

		actorID, actorName, actorBranch, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		payment := models.StaffPayment{
			UserID:      body.UserID,
			PaymentType: models.StaffPaymentType(body.PaymentType),
			Amount:      body.Amount,
			PaymentDate: paymentDate,
			Notes:       body.Notes,
			CreatedBy:   actorID,
		}

		if err := RecordPayment(database.DB, &payment); err != nil {
			return ledgerError(err, "Ödeme kaydedilemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    actorBranch,
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "staff_payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Personel ödemesi: %s - %.2f TL (%s)", payment.User.FullName, payment.Amount, payment.PaymentType),
			Before:      nil,
			After:       toPaymentResponse(payment),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toPaymentResponse(payment))
	}
}

// GET /api/staff-payments?user_id=...&type=...&from=...&to=...
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StaffPayment{}).Preload("User")

		dbq, err := auth.ScopeToBranch(c, dbq)
		if err != nil {
			return err
		}

		if uidStr := c.Query("user_id"); uidStr != "" {
			var uid uint
			if _, err := fmt.Sscan(uidStr, &uid); err != nil || uid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "user_id geçersiz")
			}
			dbq = dbq.Where("user_id = ?", uid)
		}
		if typ := c.Query("type"); typ != "" {
			dbq = dbq.Where("payment_type = ?", typ)
		}
		if from := c.Query("from"); from != "" {
			dbq = dbq.Where("payment_date >= ?", from)
		}
		if to := c.Query("to"); to != "" {
			dbq = dbq.Where("payment_date <= ?", to)
		}

		var rows []models.StaffPayment
		if err := dbq.Order("payment_date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}

		resp := make([]PaymentResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, toPaymentResponse(r))
		}
		return c.JSON(resp)
	}
}
