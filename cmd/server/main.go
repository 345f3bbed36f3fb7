package main

import (
	"log"
	"strings"

	"magaza-backend/internal/admin"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/config"
	"magaza-backend/internal/correspondence"
	"magaza-backend/internal/dashboard"
	"magaza-backend/internal/database"
	"magaza-backend/internal/expense"
	"magaza-backend/internal/inventory"
	"magaza-backend/internal/sales"
	"magaza-backend/internal/staff"
	"magaza-backend/internal/supplier"
	"magaza-backend/internal/treasury"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Merkez (admin / genel müdür / IT) route'ları
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireHeadOffice())

	// Şube yönetimi
	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeleteBranchHandler())

	// Personel yönetimi
	adminRoutes.Post("/users", staff.CreateUserHandler())
	adminRoutes.Put("/users/:id", staff.UpdateUserHandler())
	adminRoutes.Delete("/users/:id", staff.DeleteUserHandler())

	// Manuel stok düzeltmesi
	adminRoutes.Put("/products/:id/stock", inventory.SetStockHandler())

	// Ortak (auth gerektiren) route'lar

	// Ürünler
	protected.Post("/products", inventory.CreateProductHandler())
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Put("/products/:id", inventory.UpdateProductHandler())
	protected.Delete("/products/:id", inventory.DeleteProductHandler())

	// Tedarikçiler ve alım defteri
	protected.Post("/suppliers", supplier.CreateSupplierHandler())
	protected.Get("/suppliers", supplier.ListSuppliersHandler())
	protected.Delete("/suppliers/:id", supplier.DeleteSupplierHandler())
	protected.Post("/purchases", supplier.CreatePurchaseHandler())
	protected.Get("/purchases", supplier.ListPurchasesHandler())
	protected.Post("/supplier-payments", supplier.CreatePaymentHandler())
	protected.Get("/supplier-payments", supplier.ListPaymentsHandler())
	protected.Post("/purchase-returns", supplier.CreateReturnHandler())
	protected.Get("/purchase-returns", supplier.ListReturnsHandler())

	// Satışlar
	protected.Post("/sales", sales.CreateInvoiceHandler())
	protected.Get("/sales", sales.ListInvoicesHandler())
	protected.Delete("/sales/:id", sales.DeleteInvoiceHandler())
	protected.Post("/sales-returns", sales.CreateSalesReturnHandler())
	protected.Get("/sales-returns", sales.ListSalesReturnsHandler())

	// Giderler
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())

	// Kasa
	protected.Post("/treasury", treasury.CreateTreasuryLogHandler())
	protected.Get("/treasury", treasury.ListTreasuryLogsHandler())
	protected.Get("/treasury/balance", treasury.BalanceHandler())
	protected.Get("/treasury/export", treasury.ExportTreasuryLogsHandler())

	// Personel listesi ve ödemeleri
	protected.Get("/users", staff.ListUsersHandler())
	protected.Post("/staff-payments", staff.CreatePaymentHandler())
	protected.Get("/staff-payments", staff.ListPaymentsHandler())

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler(cfg))
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler())

	// Yazışmalar ve izin talepleri
	protected.Post("/correspondence/messages", correspondence.CreateMessageHandler())
	protected.Get("/correspondence/messages", correspondence.ListMessagesHandler())
	protected.Put("/correspondence/messages/:id/archive", correspondence.ArchiveMessageHandler())
	protected.Post("/correspondence/leave-requests", correspondence.CreateLeaveRequestHandler())
	protected.Get("/correspondence/leave-requests", correspondence.ListLeaveRequestsHandler())
	adminRoutes.Put("/leave-requests/:id/review", correspondence.ReviewLeaveRequestHandler())

	// Audit ve hareket akışı
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())
	protected.Get("/activity-logs", audit.ListActivityHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
