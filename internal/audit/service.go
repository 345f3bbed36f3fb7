package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"
)

type LogOptions struct {
	BranchID    *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		BranchID:    opts.BranchID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u geri al. Sadece mali yan etkisi olmayan basit
// kayıtlar geri alınabilir; tedarikçi/stok toplamlarını değiştiren işlemler
// (alım, ödeme, iade) ters kayıtla düzeltilir, undo ile değil.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	// Zaten undo edilmiş mi?
	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi geri oluştur
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		BranchID:    log.BranchID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "expense":
		return database.DB.Delete(&models.Expense{}, "id = ?", entityID).Error
	case "treasury_log":
		return database.DB.Delete(&models.TreasuryLog{}, "id = ?", entityID).Error
	case "staff_payment":
		return database.DB.Delete(&models.StaffPayment{}, "id = ?", entityID).Error
	case "correspondence":
		return database.DB.Delete(&models.Correspondence{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bu entity tipi geri alınamaz: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		expense.ID = 0 // Yeni entity oluştur
		return database.DB.Create(&expense).Error

	case "treasury_log":
		var tlog models.TreasuryLog
		if err := json.Unmarshal([]byte(dataJSON), &tlog); err != nil {
			return err
		}
		tlog.ID = 0
		return database.DB.Create(&tlog).Error

	case "staff_payment":
		var payment models.StaffPayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		payment.ID = 0
		return database.DB.Create(&payment).Error

	default:
		return fmt.Errorf("bu entity tipi geri oluşturulamaz: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		return database.DB.Model(&models.Expense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id":   expense.BranchID,
			"description": expense.Description,
			"category":    expense.Category,
			"amount":      expense.Amount,
		}).Error

	case "treasury_log":
		var tlog models.TreasuryLog
		if err := json.Unmarshal([]byte(dataJSON), &tlog); err != nil {
			return err
		}
		return database.DB.Model(&models.TreasuryLog{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"branch_id": tlog.BranchID,
			"type":      tlog.Type,
			"source":    tlog.Source,
			"amount":    tlog.Amount,
			"notes":     tlog.Notes,
		}).Error

	case "staff_payment":
		var payment models.StaffPayment
		if err := json.Unmarshal([]byte(dataJSON), &payment); err != nil {
			return err
		}
		return database.DB.Model(&models.StaffPayment{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"user_id":      payment.UserID,
			"branch_id":    payment.BranchID,
			"payment_type": payment.PaymentType,
			"amount":       payment.Amount,
			"payment_date": payment.PaymentDate,
			"notes":        payment.Notes,
		}).Error

	default:
		return fmt.Errorf("bu entity tipi geri yüklenemez: %s", entityType)
	}
}
