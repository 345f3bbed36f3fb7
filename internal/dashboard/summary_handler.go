// Package dashboard yönetim panelinin özet istatistiklerini hesaplar.
// Tüm hesaplar okunan kayıtlar üzerinde bellek içi toplamadır, ara tablo veya
// önbellek tutulmaz.
package dashboard

import (
	"sort"
	"time"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/config"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductSalesStat struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type SummaryResponse struct {
	From             string             `json:"from"`
	To               string             `json:"to"`
	TodayNetCashflow float64            `json:"today_net_cashflow"`
	Revenue          float64            `json:"revenue"`
	Expenses         float64            `json:"expenses"`
	ReturnsValue     float64            `json:"returns_value"`
	Salaries         float64            `json:"salaries"`
	Discounts        float64            `json:"discounts"`
	InventoryValue   float64            `json:"inventory_value"`
	LowStockCount    int                `json:"low_stock_count"`
	NetProfit        float64            `json:"net_profit"`
	BestSellers      []ProductSalesStat `json:"best_sellers"`
	LeastSellers     []ProductSalesStat `json:"least_sellers"`
}

// Dönem sınırlarını çözer: from/to yoksa bugün.
func resolvePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	loc := time.Now().Location()
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	if fromStr := c.Query("from"); fromStr != "" {
		d, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return start, end, fiber.NewError(fiber.StatusBadRequest, "from formatı 'YYYY-MM-DD' olmalı")
		}
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	if toStr := c.Query("to"); toStr != "" {
		d, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return start, end, fiber.NewError(fiber.StatusBadRequest, "to formatı 'YYYY-MM-DD' olmalı")
		}
		end = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return start, end, fiber.NewError(fiber.StatusBadRequest, "to, from'dan önce olamaz")
	}
	return start, end, nil
}

// SellerStats dönemdeki fatura kalemlerini ürün bazında toplar ve en çok /
// en az satanları döner. Hiç satılmayan ürünler "en az satan" listesine girmez.
func SellerStats(items []models.SalesInvoiceItem, topN int) (best, least []ProductSalesStat) {
	tally := make(map[uint]*ProductSalesStat)
	order := make([]uint, 0)
	for _, item := range items {
		stat, ok := tally[item.ProductID]
		if !ok {
			stat = &ProductSalesStat{ProductID: item.ProductID, Name: item.Name}
			tally[item.ProductID] = stat
			order = append(order, item.ProductID)
		}
		stat.Quantity += item.Quantity
		stat.Revenue += item.Subtotal
	}

	stats := make([]ProductSalesStat, 0, len(order))
	for _, id := range order {
		if tally[id].Quantity > 0 {
			stats = append(stats, *tally[id])
		}
	}

	// Eşitlikte ürün id'sine göre deterministik sıra
	desc := make([]ProductSalesStat, len(stats))
	copy(desc, stats)
	sort.SliceStable(desc, func(i, j int) bool {
		if desc[i].Quantity != desc[j].Quantity {
			return desc[i].Quantity > desc[j].Quantity
		}
		return desc[i].ProductID < desc[j].ProductID
	})

	asc := make([]ProductSalesStat, len(stats))
	copy(asc, stats)
	sort.SliceStable(asc, func(i, j int) bool {
		if asc[i].Quantity != asc[j].Quantity {
			return asc[i].Quantity < asc[j].Quantity
		}
		return asc[i].ProductID < asc[j].ProductID
	})

	if len(desc) > topN {
		desc = desc[:topN]
	}
	if len(asc) > topN {
		asc = asc[:topN]
	}
	return desc, asc
}

// NetProfit - Tahmini net kâr. Satılan malın maliyeti ciro üzerinden
// cogsRatio oranıyla tahmin edilir.
func NetProfit(revenue, expenses, salaries, returns, cogsRatio float64) float64 {
	return revenue - revenue*cogsRatio - expenses - salaries - returns
}

// GET /api/dashboard/summary?from=...&to=...[&branch_id=...]
func SummaryHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.VisibleBranchID(c)
		if err != nil {
			return err
		}

		start, end, err := resolvePeriod(c)
		if err != nil {
			return err
		}

		resp := SummaryResponse{
			From: start.Format("2006-01-02"),
			To:   end.AddDate(0, 0, -1).Format("2006-01-02"),
		}

		// Dönem faturaları (kalemleriyle)
		invQ := database.DB.Model(&models.SalesInvoice{}).
			Preload("Items").
			Where("is_deleted = ? AND created_at >= ? AND created_at < ?", false, start, end)
		if branchID != nil {
			invQ = invQ.Where("branch_id = ?", *branchID)
		}
		var invoices []models.SalesInvoice
		if err := invQ.Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış verileri yüklenemedi")
		}

		items := make([]models.SalesInvoiceItem, 0)
		for _, inv := range invoices {
			resp.Revenue += inv.NetTotal
			resp.Discounts += inv.TotalBeforeDiscount - inv.NetTotal
			items = append(items, inv.Items...)
		}

		// Dönem giderleri
		expQ := database.DB.Model(&models.Expense{}).
			Where("created_at >= ? AND created_at < ?", start, end)
		if branchID != nil {
			expQ = expQ.Where("branch_id = ?", *branchID)
		}
		var expenses []models.Expense
		if err := expQ.Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider verileri yüklenemedi")
		}
		for _, e := range expenses {
			resp.Expenses += e.Amount
		}

		// Dönem müşteri iadeleri
		retQ := database.DB.Model(&models.SalesReturn{}).
			Where("is_deleted = ? AND created_at >= ? AND created_at < ?", false, start, end)
		if branchID != nil {
			retQ = retQ.Where("branch_id = ?", *branchID)
		}
		var returns []models.SalesReturn
		if err := retQ.Find(&returns).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İade verileri yüklenemedi")
		}
		for _, r := range returns {
			resp.ReturnsValue += r.TotalRefund
		}

		// Dönem personel ödemeleri (kesinti hariç)
		payQ := database.DB.Model(&models.StaffPayment{}).
			Where("payment_type <> ? AND payment_date >= ? AND payment_date < ?", models.StaffPaymentDeduction, start, end)
		if branchID != nil {
			payQ = payQ.Where("branch_id = ?", *branchID)
		}
		var payments []models.StaffPayment
		if err := payQ.Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel ödemeleri yüklenemedi")
		}
		for _, p := range payments {
			resp.Salaries += p.Amount
		}

		// Anlık stok değeri ve kritik stok sayısı
		prodQ := database.DB.Model(&models.Product{}).Where("is_deleted = ?", false)
		if branchID != nil {
			prodQ = prodQ.Where("branch_id = ?", *branchID)
		}
		var products []models.Product
		if err := prodQ.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün verileri yüklenemedi")
		}
		for _, p := range products {
			resp.InventoryValue += float64(p.Stock) * p.WholesalePrice
			if p.Stock <= p.LowStockThreshold {
				resp.LowStockCount++
			}
		}

		// Bugünün net nakit akışı (dönemden bağımsız)
		loc := time.Now().Location()
		now := time.Now()
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		todayEnd := todayStart.AddDate(0, 0, 1)
		if start.Equal(todayStart) && end.Equal(todayEnd) {
			resp.TodayNetCashflow = resp.Revenue - resp.Expenses - resp.ReturnsValue
		} else {
			today, err := periodCashflow(branchID, todayStart, todayEnd)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Günlük nakit akışı hesaplanamadı")
			}
			resp.TodayNetCashflow = today
		}

		resp.NetProfit = NetProfit(resp.Revenue, resp.Expenses, resp.Salaries, resp.ReturnsValue, cfg.CostOfGoodsRatio)
		resp.BestSellers, resp.LeastSellers = SellerStats(items, 5)

		return c.JSON(resp)
	}
}

// periodCashflow verilen aralığın net nakit akışını hesaplar:
// fatura net toplamı - giderler - müşteri iadeleri.
func periodCashflow(branchID *uint, start, end time.Time) (float64, error) {
	var total float64

	invQ := database.DB.Model(&models.SalesInvoice{}).
		Where("is_deleted = ? AND created_at >= ? AND created_at < ?", false, start, end)
	if branchID != nil {
		invQ = invQ.Where("branch_id = ?", *branchID)
	}
	var invoices []models.SalesInvoice
	if err := invQ.Find(&invoices).Error; err != nil {
		return 0, err
	}
	for _, inv := range invoices {
		total += inv.NetTotal
	}

	expQ := database.DB.Model(&models.Expense{}).
		Where("created_at >= ? AND created_at < ?", start, end)
	if branchID != nil {
		expQ = expQ.Where("branch_id = ?", *branchID)
	}
	var expenses []models.Expense
	if err := expQ.Find(&expenses).Error; err != nil {
		return 0, err
	}
	for _, e := range expenses {
		total -= e.Amount
	}

	retQ := database.DB.Model(&models.SalesReturn{}).
		Where("is_deleted = ? AND created_at >= ? AND created_at < ?", false, start, end)
	if branchID != nil {
		retQ = retQ.Where("branch_id = ?", *branchID)
	}
	var returns []models.SalesReturn
	if err := retQ.Find(&returns).Error; err != nil {
		return 0, err
	}
	for _, r := range returns {
		total -= r.TotalRefund
	}

	return total, nil
}
