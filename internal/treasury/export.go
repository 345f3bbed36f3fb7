package treasury

import (
	"fmt"

	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/treasury/export
// Liste filtrelerinin aynısını kullanarak kasa defterini XLSX olarak indirir.
func ExportTreasuryLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := buildListQuery(c)
		if err != nil {
			return err
		}

		var logs []models.TreasuryLog
		if err := dbq.Preload("Branch").Order("created_at asc, id asc").Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kayıtları listelenemedi")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Kasa Defteri"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Tarih", "Şube", "Tür", "Kaynak", "Referans", "Tutar", "Açıklama"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		var totalIn, totalOut float64
		for i, log := range logs {
			row := i + 2
			typeLabel := "Giriş"
			if log.Type == models.TreasuryOut {
				typeLabel = "Çıkış"
				totalOut += log.Amount
			} else {
				totalIn += log.Amount
			}

			values := []interface{}{
				log.CreatedAt.Format("2006-01-02 15:04:05"),
				log.Branch.Name,
				typeLabel,
				log.Source,
				log.ReferenceID,
				log.Amount,
				log.Notes,
			}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, row)
				f.SetCellValue(sheet, cell, v)
			}
		}

		// Özet satırı
		summaryRow := len(logs) + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Toplam Giriş")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), totalIn)
		f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "Toplam Çıkış")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+1), totalOut)
		f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+2), "Bakiye")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+2), totalIn-totalOut)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="kasa-defteri.xlsx"`)
		return c.Send(buf.Bytes())
	}
}
