package database

import (
	"log"

	"magaza-backend/internal/config"
	"magaza-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// creator_username kolonu sonradan eklendi; eski faturaları backfill et
	if DB.Migrator().HasTable(&models.SalesInvoice{}) {
		var emptyCount int64
		DB.Model(&models.SalesInvoice{}).
			Where("creator_username = '' OR creator_username IS NULL").
			Count(&emptyCount)
		if emptyCount > 0 {
			log.Printf("%d satış faturasında creator_username boş, kullanıcı tablosundan dolduruluyor...", emptyCount)
			if err := DB.Exec(`
				UPDATE sales_invoices SET creator_username = users.username
				FROM users
				WHERE sales_invoices.created_by = users.id
				  AND (sales_invoices.creator_username = '' OR sales_invoices.creator_username IS NULL)
			`).Error; err != nil {
				log.Printf("creator_username backfill hatası (devam ediliyor): %v", err)
			}
		}
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate - Tüm modelleri migrate eder. Testlerde in-memory sqlite ile de kullanılır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.Product{},
		&models.Supplier{},
		&models.PurchaseRecord{},
		&models.PurchaseItem{},
		&models.SupplierPayment{},
		&models.PurchaseReturn{},
		&models.PurchaseReturnItem{},
		&models.TreasuryLog{},
		&models.SalesInvoice{},
		&models.SalesInvoiceItem{},
		&models.SalesReturn{},
		&models.SalesReturnItem{},
		&models.Expense{},
		&models.StaffPayment{},
		&models.Correspondence{},
		&models.AuditLog{},
	)
}
