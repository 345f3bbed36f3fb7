package dashboard

import (
	"time"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SalesChartPoint struct {
	Date     string  `json:"date"`
	NetTotal float64 `json:"net_total"`
	Count    int     `json:"count"`
}

// GET /api/dashboard/sales-chart
// Son 7 günün günlük satış toplamları. Satışsız günler 0 ile döner.
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.VisibleBranchID(c)
		if err != nil {
			return err
		}

		loc := time.Now().Location()
		now := time.Now()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		start := end.AddDate(0, 0, -7)

		dbq := database.DB.Model(&models.SalesInvoice{}).
			Where("is_deleted = ? AND created_at >= ? AND created_at < ?", false, start, end)
		if branchID != nil {
			dbq = dbq.Where("branch_id = ?", *branchID)
		}

		var invoices []models.SalesInvoice
		if err := dbq.Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış verileri yüklenemedi")
		}

		byDay := make(map[string]*SalesChartPoint)
		points := make([]SalesChartPoint, 0, 7)
		for i := 0; i < 7; i++ {
			day := start.AddDate(0, 0, i).Format("2006-01-02")
			points = append(points, SalesChartPoint{Date: day})
		}
		for i := range points {
			byDay[points[i].Date] = &points[i]
		}

		for _, inv := range invoices {
			key := inv.CreatedAt.In(loc).Format("2006-01-02")
			if p, ok := byDay[key]; ok {
				p.NetTotal += inv.NetTotal
				p.Count++
			}
		}

		return c.JSON(points)
	}
}
