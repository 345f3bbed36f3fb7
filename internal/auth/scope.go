package auth

import (
	"fmt"

	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Şube izolasyonu tek noktadan uygulanır: merkez roller tüm şubeleri görür
// (isterlerse ?branch_id= ile daraltır), diğer roller token'daki şubeye sabitlenir.
// Her liste/özet handler'ı bu yardımcıları kullanır, kendi filtresini yazmaz.

// CurrentRole - context'ten rolü çıkar
func CurrentRole(c *fiber.Ctx) (models.UserRole, error) {
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return "", fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}
	return role, nil
}

// CurrentUser - context'ten kullanıcı id, kullanıcı adı ve şube bilgisini çıkar
func CurrentUser(c *fiber.Ctx) (uint, string, *uint, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	username, _ := c.Locals(CtxUsernameKey).(string)

	var branchID *uint
	if bPtr, ok := c.Locals(CtxBranchIDKey).(*uint); ok && bPtr != nil {
		branchID = bPtr
	}

	return userID, username, branchID, nil
}

// VisibleBranchID - İsteği yapan kullanıcının görebileceği şubeyi çözer.
// nil dönerse kullanıcı tüm şubeleri görebilir (merkez, filtre yok).
func VisibleBranchID(c *fiber.Ctx) (*uint, error) {
	role, err := CurrentRole(c)
	if err != nil {
		return nil, err
	}

	if role.IsHeadOffice() {
		// Merkez: opsiyonel ?branch_id= filtresi
		bidStr := c.Query("branch_id")
		if bidStr == "" {
			return nil, nil
		}
		var bid uint
		if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
		}
		return &bid, nil
	}

	// Şube personeli token'daki şubeye sabitlenir; query parametresi yok sayılır
	bPtr, ok := c.Locals(CtxBranchIDKey).(*uint)
	if !ok || bPtr == nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
	}
	return bPtr, nil
}

// ScopeToBranch - sorguya şube filtresini uygular
func ScopeToBranch(c *fiber.Ctx, q *gorm.DB) (*gorm.DB, error) {
	branchID, err := VisibleBranchID(c)
	if err != nil {
		return nil, err
	}
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	return q, nil
}

// RequireSameBranch - Var olan bir kaydı değiştiren işlemler için: şube
// personeli yalnızca kendi şubesinin kaydına dokunabilir, merkez hepsine.
func RequireSameBranch(c *fiber.Ctx, recordBranchID *uint) error {
	role, err := CurrentRole(c)
	if err != nil {
		return err
	}
	if role.IsHeadOffice() {
		return nil
	}

	bPtr, ok := c.Locals(CtxBranchIDKey).(*uint)
	if !ok || bPtr == nil {
		return fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
	}
	if recordBranchID == nil || *recordBranchID != *bPtr {
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
	}
	return nil
}

// RequiredBranchID - Yazma işlemleri için şubeyi çözer: şube personeli kendi
// şubesine yazar, merkez gövdede branch_id göndermek zorundadır.
func RequiredBranchID(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
	role, err := CurrentRole(c)
	if err != nil {
		return 0, err
	}

	if !role.IsHeadOffice() {
		bPtr, ok := c.Locals(CtxBranchIDKey).(*uint)
		if !ok || bPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *bPtr, nil
	}

	if bodyBranchID == nil || *bodyBranchID == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	return *bodyBranchID, nil
}
