package audit

import (
	"fmt"
	"sort"
	"time"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ActivityEntry struct {
	Source      string  `json:"source"` // sale | expense | sales_return | staff_payment | purchase
	EntityID    uint    `json:"entity_id"`
	BranchID    *uint   `json:"branch_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`

	createdAt time.Time
}

// Kaynak başına çekilen kayıt sayıları
const (
	activityLimitSales         = 30
	activityLimitExpenses      = 15
	activityLimitSalesReturns  = 10
	activityLimitStaffPayments = 15
	activityLimitPurchases     = 15
)

// GET /api/activity-logs
// Son hareketler: beş kaynaktan sınırlı sayıda kayıt çekilir, zamana göre
// birleştirilir.
func ListActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.VisibleBranchID(c)
		if err != nil {
			return err
		}

		entries := make([]ActivityEntry, 0, 85)

		// Satışlar
		invQ := database.DB.Model(&models.SalesInvoice{}).Where("is_deleted = ?", false)
		if branchID != nil {
			invQ = invQ.Where("branch_id = ?", *branchID)
		}
		var invoices []models.SalesInvoice
		if err := invQ.Order("created_at desc").Limit(activityLimitSales).Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}
		for _, inv := range invoices {
			entries = append(entries, ActivityEntry{
				Source:      "sale",
				EntityID:    inv.ID,
				BranchID:    inv.BranchID,
				Amount:      inv.NetTotal,
				Description: fmt.Sprintf("Satış faturası #%d (%s)", inv.ID, inv.CreatorUsername),
				createdAt:   inv.CreatedAt,
			})
		}

		// Giderler
		expQ := database.DB.Model(&models.Expense{})
		if branchID != nil {
			expQ = expQ.Where("branch_id = ?", *branchID)
		}
		var expenses []models.Expense
		if err := expQ.Order("created_at desc").Limit(activityLimitExpenses).Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}
		for _, e := range expenses {
			entries = append(entries, ActivityEntry{
				Source:      "expense",
				EntityID:    e.ID,
				BranchID:    e.BranchID,
				Amount:      e.Amount,
				Description: fmt.Sprintf("Gider: %s", e.Category),
				createdAt:   e.CreatedAt,
			})
		}

		// Müşteri iadeleri
		retQ := database.DB.Model(&models.SalesReturn{}).Where("is_deleted = ?", false)
		if branchID != nil {
			retQ = retQ.Where("branch_id = ?", *branchID)
		}
		var returns []models.SalesReturn
		if err := retQ.Order("created_at desc").Limit(activityLimitSalesReturns).Find(&returns).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}
		for _, r := range returns {
			entries = append(entries, ActivityEntry{
				Source:      "sales_return",
				EntityID:    r.ID,
				BranchID:    r.BranchID,
				Amount:      r.TotalRefund,
				Description: fmt.Sprintf("Müşteri iadesi #%d", r.ID),
				createdAt:   r.CreatedAt,
			})
		}

		// Personel ödemeleri
		payQ := database.DB.Model(&models.StaffPayment{}).Preload("User")
		if branchID != nil {
			payQ = payQ.Where("branch_id = ?", *branchID)
		}
		var payments []models.StaffPayment
		if err := payQ.Order("created_at desc").Limit(activityLimitStaffPayments).Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}
		for _, p := range payments {
			entries = append(entries, ActivityEntry{
				Source:      "staff_payment",
				EntityID:    p.ID,
				BranchID:    p.BranchID,
				Amount:      p.Amount,
				Description: fmt.Sprintf("Personel ödemesi: %s (%s)", p.User.FullName, p.PaymentType),
				createdAt:   p.CreatedAt,
			})
		}

		// Tedarikçi alımları
		purQ := database.DB.Model(&models.PurchaseRecord{})
		if branchID != nil {
			purQ = purQ.Where("branch_id = ?", *branchID)
		}
		var purchases []models.PurchaseRecord
		if err := purQ.Order("created_at desc").Limit(activityLimitPurchases).Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}
		for _, p := range purchases {
			pb := p.BranchID
			entries = append(entries, ActivityEntry{
				Source:      "purchase",
				EntityID:    p.ID,
				BranchID:    &pb,
				Amount:      p.TotalAmount,
				Description: fmt.Sprintf("Alım faturası: %s (%s)", p.SupplierInvoiceNo, p.SupplierName),
				createdAt:   p.CreatedAt,
			})
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].createdAt.After(entries[j].createdAt)
		})
		for i := range entries {
			entries[i].CreatedAt = entries[i].createdAt.Format("2006-01-02 15:04:05")
		}

		return c.JSON(entries)
	}
}
