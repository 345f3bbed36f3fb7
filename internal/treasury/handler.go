// Package treasury şube kasa defterini yönetir. Satış, gider, iade ve personel
// ödemeleri kendi transaction'ları içinde buraya kayıt düşer; bu paket manuel
// girişleri, listelemeyi ve bakiye hesabını sağlar.
package treasury

import (
	"fmt"
	"strings"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTreasuryLogRequest struct {
	Type     string  `json:"type"` // "in" | "out"
	Amount   float64 `json:"amount"`
	Notes    string  `json:"notes"`
	BranchID *uint   `json:"branch_id"` // merkez için zorunlu
}

type TreasuryLogResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	Type        string  `json:"type"`
	Source      string  `json:"source"`
	ReferenceID string  `json:"reference_id"`
	Amount      float64 `json:"amount"`
	Notes       string  `json:"notes"`
	CreatedAt   string  `json:"created_at"`
}

type BalanceResponse struct {
	BranchID *uint   `json:"branch_id"`
	TotalIn  float64 `json:"total_in"`
	TotalOut float64 `json:"total_out"`
	Balance  float64 `json:"balance"`
}

func toLogResponse(log models.TreasuryLog) TreasuryLogResponse {
	return TreasuryLogResponse{
		ID:          log.ID,
		BranchID:    log.BranchID,
		Type:        string(log.Type),
		Source:      log.Source,
		ReferenceID: log.ReferenceID,
		Amount:      log.Amount,
		Notes:       log.Notes,
		CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ComputeBalance kasadaki güncel bakiyeyi hesaplar. Ara toplam tutulmaz, her
// çağrıda tüm kayıtlar üzerinden yeniden toplanır. branchID nil ise tüm
// şubelerin toplamı döner.
func ComputeBalance(db *gorm.DB, branchID *uint) (BalanceResponse, error) {
	dbq := db.Model(&models.TreasuryLog{}).Select("type, amount")
	if branchID != nil {
		dbq = dbq.Where("branch_id = ?", *branchID)
	}

	type row struct {
		Type   models.TreasuryLogType
		Amount float64
	}
	var rows []row
	if err := dbq.Scan(&rows).Error; err != nil {
		return BalanceResponse{}, err
	}

	resp := BalanceResponse{BranchID: branchID}
	for _, r := range rows {
		switch r.Type {
		case models.TreasuryIn:
			resp.TotalIn += r.Amount
		case models.TreasuryOut:
			resp.TotalOut += r.Amount
		}
	}
	resp.Balance = resp.TotalIn - resp.TotalOut
	return resp, nil
}

// POST /api/treasury
// Manuel kasa girişi. Referans olarak uuid üretilir.
func CreateTreasuryLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTreasuryLogRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		logType := models.TreasuryLogType(body.Type)
		if logType != models.TreasuryIn && logType != models.TreasuryOut {
			return fiber.NewError(fiber.StatusBadRequest, "type geçersiz, 'in' veya 'out' olmalı")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar 0'dan büyük olmalı")
		}
		body.Notes = strings.TrimSpace(body.Notes)
		if body.Notes == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Manuel kayıt için açıklama zorunlu")
		}

		branchID, err := auth.RequiredBranchID(c, body.BranchID)
		if err != nil {
			return err
		}

		userID, username, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		log := models.TreasuryLog{
			BranchID:    branchID,
			Type:        logType,
			Source:      models.TreasurySourceManual,
			ReferenceID: uuid.NewString(),
			Amount:      body.Amount,
			Notes:       body.Notes,
			CreatedBy:   userID,
		}

		if err := database.DB.Create(&log).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kaydı oluşturulamadı")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			BranchID:    &branchID,
			UserID:      userID,
			UserName:    username,
			EntityType:  "treasury_log",
			EntityID:    log.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Manuel kasa hareketi: %s %.2f TL", log.Type, log.Amount),
			Before:      nil,
			After:       toLogResponse(log),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toLogResponse(log))
	}
}

// Liste sorgusunu ortak kurar; export da aynı filtreleri kullanır.
func buildListQuery(c *fiber.Ctx) (*gorm.DB, error) {
	dbq := database.DB.Model(&models.TreasuryLog{})

	dbq, err := auth.ScopeToBranch(c, dbq)
	if err != nil {
		return nil, err
	}

	// Dönem filtresi: day > month > year önceliğinde
	loc := time.Now().Location()
	if dayStr := c.Query("day"); dayStr != "" {
		d, err := time.Parse("2006-01-02", dayStr)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "day formatı 'YYYY-MM-DD' olmalı")
		}
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		dbq = dbq.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1))
	} else if monthStr := c.Query("month"); monthStr != "" {
		m, err := time.Parse("2006-01", monthStr)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "month formatı 'YYYY-MM' olmalı")
		}
		start := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, loc)
		dbq = dbq.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 1, 0))
	} else if yearStr := c.Query("year"); yearStr != "" {
		var year int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		start := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
		dbq = dbq.Where("created_at >= ? AND created_at < ?", start, start.AddDate(1, 0, 0))
	}

	if typ := c.Query("type"); typ != "" {
		if typ != string(models.TreasuryIn) && typ != string(models.TreasuryOut) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "type geçersiz")
		}
		dbq = dbq.Where("type = ?", typ)
	}

	if source := c.Query("source"); source != "" {
		dbq = dbq.Where("source = ?", source)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		dbq = dbq.Where("notes LIKE ? OR reference_id LIKE ?", like, like)
	}

	return dbq, nil
}

// GET /api/treasury?day=...&month=...&year=...&type=...&source=...&search=...
func ListTreasuryLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := buildListQuery(c)
		if err != nil {
			return err
		}

		var logs []models.TreasuryLog
		if err := dbq.Order("created_at desc, id desc").Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kayıtları listelenemedi")
		}

		resp := make([]TreasuryLogResponse, 0, len(logs))
		for _, log := range logs {
			resp = append(resp, toLogResponse(log))
		}
		return c.JSON(resp)
	}
}

// GET /api/treasury/balance
func BalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.VisibleBranchID(c)
		if err != nil {
			return err
		}

		resp, err := ComputeBalance(database.DB, branchID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bakiye hesaplanamadı")
		}
		return c.JSON(resp)
	}
}
