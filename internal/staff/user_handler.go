// Package staff personel kayıtlarını ve personel ödemelerini yönetir.
package staff

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	FullName    string  `json:"full_name"`
	PhoneNumber string  `json:"phone_number"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	Salary      float64 `json:"salary"`
	BirthDate   *string `json:"birth_date"` // "2000-05-14"
	BranchID    *uint   `json:"branch_id"`
}

type UpdateUserRequest struct {
	FullName    *string  `json:"full_name"`
	PhoneNumber *string  `json:"phone_number"`
	Password    *string  `json:"password"`
	Role        *string  `json:"role"`
	Salary      *float64 `json:"salary"`
	BranchID    *uint    `json:"branch_id"`
}

type UserResponse struct {
	ID          uint    `json:"id"`
	Username    string  `json:"username"`
	FullName    string  `json:"full_name"`
	PhoneNumber string  `json:"phone_number"`
	Role        string  `json:"role"`
	Salary      float64 `json:"salary"`
	BirthDate   string  `json:"birth_date,omitempty"`
	BranchID    *uint   `json:"branch_id"`
	CreatedAt   string  `json:"created_at"`
}

func toUserResponse(u models.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Salary:      u.Salary,
		BranchID:    u.BranchID,
		CreatedAt:   u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if u.BirthDate != nil {
		resp.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	return resp
}

func validRole(role models.UserRole) bool {
	switch role {
	case models.RoleAdmin, models.RoleGeneralManager, models.RoleITSupport,
		models.RoleSupervisor, models.RoleEmployee:
		return true
	}
	return false
}

// GenerateUsername - Role göre önek + 6 haneli rastgele sayı. Çakışmada
// yeniden denenir.
func GenerateUsername(role models.UserRole) string {
	var prefix string
	switch role {
	case models.RoleSupervisor:
		prefix = "S-"
	case models.RoleEmployee:
		prefix = "E-"
	default:
		prefix = "A-"
	}
	return fmt.Sprintf("%s%06d", prefix, 100000+rand.Intn(900000))
}

func uniqueUsername(role models.UserRole) (string, error) {
	for i := 0; i < 10; i++ {
		candidate := GenerateUsername(role)
		var count int64
		if err := database.DB.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("kullanıcı adı üretilemedi")
}

// POST /api/admin/users
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.FullName = strings.TrimSpace(body.FullName)
		if body.FullName == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve şifre zorunlu")
		}
		if len(body.Password) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
		}

		role := models.UserRole(body.Role)
		if !validRole(role) {
			return fiber.NewError(fiber.StatusBadRequest, "Rol geçersiz")
		}
		if body.Salary < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Maaş negatif olamaz")
		}

		// Şube rolleri bir şubeye bağlanmak zorunda, merkez rolleri bağlanamaz
		if role.IsHeadOffice() {
			body.BranchID = nil
		} else {
			if body.BranchID == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Şube personeli için branch_id zorunlu")
			}
			var branch models.Branch
			if err := database.DB.First(&branch, "id = ?", *body.BranchID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Şube bulunamadı")
			}
		}

		var birthDate *time.Time
		if body.BirthDate != nil && *body.BirthDate != "" {
			d, err := time.Parse("2006-01-02", *body.BirthDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Doğum tarihi 'YYYY-MM-DD' formatında olmalı")
			}
			birthDate = &d
		}

		username, err := uniqueUsername(role)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı adı üretilemedi")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
		}

		user := models.User{
			BranchID:     body.BranchID,
			Username:     username,
			FullName:     body.FullName,
			PhoneNumber:  strings.TrimSpace(body.PhoneNumber),
			PasswordHash: string(hash),
			Role:         role,
			Salary:       body.Salary,
			BirthDate:    birthDate,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel oluşturulamadı")
		}

		actorID, actorName, actorBranch, aErr := auth.CurrentUser(c)
		if aErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    actorBranch,
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Personel eklendi: %s (%s)", user.FullName, user.Username),
				Before:      nil,
				After:       toUserResponse(user),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		// Şifre sadece oluşturma yanıtında bir kez döner
		resp := toUserResponse(user)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user":             resp,
			"initial_password": body.Password,
		})
	}
}

// GET /api/users?role=...&search=...
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.User{})

		branchID, err := auth.VisibleBranchID(c)
		if err != nil {
			return err
		}
		if branchID != nil {
			dbq = dbq.Where("branch_id = ?", *branchID)
		}

		if role := c.Query("role"); role != "" {
			dbq = dbq.Where("role = ?", role)
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("full_name LIKE ? OR username LIKE ?", like, like)
		}

		var users []models.User
		if err := dbq.Order("full_name asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel listelenemedi")
		}

		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(u))
		}
		return c.JSON(resp)
	}
}

// PUT /api/admin/users/:id
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := toUserResponse(user)

		if body.FullName != nil {
			name := strings.TrimSpace(*body.FullName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "İsim boş olamaz")
			}
			user.FullName = name
		}
		if body.PhoneNumber != nil {
			user.PhoneNumber = strings.TrimSpace(*body.PhoneNumber)
		}
		if body.Password != nil {
			if len(*body.Password) < 6 {
				return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
			}
			user.PasswordHash = string(hash)
		}
		if body.Role != nil {
			role := models.UserRole(*body.Role)
			if !validRole(role) {
				return fiber.NewError(fiber.StatusBadRequest, "Rol geçersiz")
			}
			// Son admin rolden düşürülemez
			if user.Role == models.RoleAdmin && role != models.RoleAdmin {
				var adminCount int64
				if err := database.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Rol kontrol edilemedi")
				}
				if adminCount <= 1 {
					return fiber.NewError(fiber.StatusBadRequest, "Sistemdeki son admin rolden düşürülemez")
				}
			}
			user.Role = role
			if role.IsHeadOffice() {
				user.BranchID = nil
			}
		}
		if body.Salary != nil {
			if *body.Salary < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Maaş negatif olamaz")
			}
			user.Salary = *body.Salary
		}
		if body.BranchID != nil && !user.Role.IsHeadOffice() {
			var branch models.Branch
			if err := database.DB.First(&branch, "id = ?", *body.BranchID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Şube bulunamadı")
			}
			user.BranchID = body.BranchID
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel güncellenemedi")
		}

		actorID, actorName, actorBranch, aErr := auth.CurrentUser(c)
		if aErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    actorBranch,
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Personel güncellendi: %s", user.Username),
				Before:      before,
				After:       toUserResponse(user),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toUserResponse(user))
	}
}

// DELETE /api/admin/users/:id
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		// Son admin silinemez
		if user.Role == models.RoleAdmin {
			var adminCount int64
			if err := database.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Personel kontrol edilemedi")
			}
			if adminCount <= 1 {
				return fiber.NewError(fiber.StatusBadRequest, "Sistemdeki son admin silinemez")
			}
		}

		if err := database.DB.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel silinemedi")
		}

		actorID, actorName, actorBranch, aErr := auth.CurrentUser(c)
		if aErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    actorBranch,
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Personel silindi: %s (%s)", user.FullName, user.Username),
				Before:      toUserResponse(user),
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
