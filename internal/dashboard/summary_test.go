package dashboard

import (
	"testing"

	"magaza-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSellerStatsBestAndLeast(t *testing.T) {
	items := []models.SalesInvoiceItem{
		{ProductID: 1, Name: "Çay", Quantity: 10, Subtotal: 750},
		{ProductID: 2, Name: "Kahve", Quantity: 3, Subtotal: 600},
		{ProductID: 1, Name: "Çay", Quantity: 5, Subtotal: 375},
		{ProductID: 3, Name: "Şeker", Quantity: 8, Subtotal: 240},
		{ProductID: 4, Name: "Un", Quantity: 1, Subtotal: 45},
		{ProductID: 5, Name: "Tuz", Quantity: 6, Subtotal: 90},
		{ProductID: 6, Name: "Pirinç", Quantity: 2, Subtotal: 130},
	}

	best, least := SellerStats(items, 5)

	// En çok satan: miktara göre azalan
	assert.Len(t, best, 5)
	assert.Equal(t, uint(1), best[0].ProductID)
	assert.Equal(t, 15, best[0].Quantity)
	assert.Equal(t, float64(1125), best[0].Revenue)
	assert.Equal(t, uint(3), best[1].ProductID)

	// En az satan: miktara göre artan
	assert.Len(t, least, 5)
	assert.Equal(t, uint(4), least[0].ProductID)
	assert.Equal(t, 1, least[0].Quantity)
	assert.Equal(t, uint(6), least[1].ProductID)
}

func TestSellerStatsExcludesZeroQuantity(t *testing.T) {
	items := []models.SalesInvoiceItem{
		{ProductID: 1, Name: "Çay", Quantity: 5, Subtotal: 375},
		{ProductID: 2, Name: "İptal Kalem", Quantity: 0, Subtotal: 0},
	}

	best, least := SellerStats(items, 5)
	assert.Len(t, best, 1)
	assert.Len(t, least, 1)
	assert.Equal(t, uint(1), least[0].ProductID)
}

func TestSellerStatsDeterministicOnTies(t *testing.T) {
	items := []models.SalesInvoiceItem{
		{ProductID: 7, Name: "B", Quantity: 4, Subtotal: 40},
		{ProductID: 2, Name: "A", Quantity: 4, Subtotal: 40},
		{ProductID: 5, Name: "C", Quantity: 4, Subtotal: 40},
	}

	// Eşit miktarda ürün id sırası belirleyici
	best, least := SellerStats(items, 5)
	assert.Equal(t, uint(2), best[0].ProductID)
	assert.Equal(t, uint(5), best[1].ProductID)
	assert.Equal(t, uint(7), best[2].ProductID)
	assert.Equal(t, uint(2), least[0].ProductID)
}

func TestSellerStatsEmpty(t *testing.T) {
	best, least := SellerStats(nil, 5)
	assert.Empty(t, best)
	assert.Empty(t, least)
}

func TestNetProfit(t *testing.T) {
	// Ciro 10000, maliyet oranı 0.70: mal maliyeti 7000
	got := NetProfit(10000, 1200, 800, 300, 0.70)
	assert.InDelta(t, 700, got, 0.001)

	// Satış yoksa kâr giderlerin negatifi
	got = NetProfit(0, 500, 0, 0, 0.70)
	assert.InDelta(t, -500, got, 0.001)
}
