// Package correspondence kurum içi yazışmaları yönetir: mesajlar ve izin
// talepleri. İzin taleplerini sadece merkez onaylar veya reddeder.
package correspondence

import (
	"fmt"
	"strings"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateMessageRequest struct {
	ReceiverID      *uint  `json:"receiver_id"` // Boşsa genel duyuru
	ParentMessageID *uint  `json:"parent_message_id"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
}

type CreateLeaveRequest struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	LeaveStart string `json:"leave_start"` // "2026-09-01"
	LeaveEnd   string `json:"leave_end"`
}

type ReviewLeaveRequest struct {
	Status string `json:"status"` // "approved" | "rejected"
	Notes  string `json:"notes"`
}

type CorrespondenceResponse struct {
	ID              uint   `json:"id"`
	Kind            string `json:"kind"`
	SenderID        uint   `json:"sender_id"`
	SenderUsername  string `json:"sender_username"`
	SenderFullName  string `json:"sender_full_name"`
	ReceiverID      *uint  `json:"receiver_id"`
	ParentMessageID *uint  `json:"parent_message_id"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
	LeaveStatus     string `json:"leave_status,omitempty"`
	LeaveStart      string `json:"leave_start,omitempty"`
	LeaveEnd        string `json:"leave_end,omitempty"`
	IsArchived      bool   `json:"is_archived"`
	CreatedAt       string `json:"created_at"`
}

func toResponse(m models.Correspondence) CorrespondenceResponse {
	resp := CorrespondenceResponse{
		ID:              m.ID,
		Kind:            string(m.Kind),
		SenderID:        m.SenderID,
		SenderUsername:  m.Sender.Username,
		SenderFullName:  m.Sender.FullName,
		ReceiverID:      m.ReceiverID,
		ParentMessageID: m.ParentMessageID,
		Subject:         m.Subject,
		Body:            m.Body,
		LeaveStatus:     string(m.LeaveStatus),
		IsArchived:      m.IsArchived,
		CreatedAt:       m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if m.LeaveStart != nil {
		resp.LeaveStart = m.LeaveStart.Format("2006-01-02")
	}
	if m.LeaveEnd != nil {
		resp.LeaveEnd = m.LeaveEnd.Format("2006-01-02")
	}
	return resp
}

// POST /api/correspondence/messages
func CreateMessageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMessageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Subject = strings.TrimSpace(body.Subject)
		if body.Subject == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Konu zorunlu")
		}

		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		if body.ReceiverID != nil {
			var receiver models.User
			if err := database.DB.First(&receiver, "id = ?", *body.ReceiverID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Alıcı bulunamadı")
			}
		}
		if body.ParentMessageID != nil {
			var parent models.Correspondence
			if err := database.DB.First(&parent, "id = ? AND is_deleted = ?", *body.ParentMessageID, false).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Yanıtlanan mesaj bulunamadı")
			}
		}

		msg := models.Correspondence{
			SenderID:        userID,
			ReceiverID:      body.ReceiverID,
			ParentMessageID: body.ParentMessageID,
			Kind:            models.CorrespondenceMessage,
			Subject:         body.Subject,
			Body:            body.Body,
		}

		if err := database.DB.Create(&msg).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesaj kaydedilemedi")
		}

		database.DB.Preload("Sender").First(&msg, msg.ID)
		return c.Status(fiber.StatusCreated).JSON(toResponse(msg))
	}
}

// GET /api/correspondence/messages?box=inbox|sent&include_archived=true
func ListMessagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Correspondence{}).
			Preload("Sender").
			Where("kind = ? AND is_deleted = ?", models.CorrespondenceMessage, false)

		switch c.Query("box", "inbox") {
		case "inbox":
			// Kişiye özel + genel duyurular
			dbq = dbq.Where("receiver_id = ? OR receiver_id IS NULL", userID)
		case "sent":
			dbq = dbq.Where("sender_id = ?", userID)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "box geçersiz, 'inbox' veya 'sent' olmalı")
		}

		if c.Query("include_archived") != "true" {
			dbq = dbq.Where("is_archived = ?", false)
		}

		var rows []models.Correspondence
		if err := dbq.Order("created_at desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesajlar listelenemedi")
		}

		resp := make([]CorrespondenceResponse, 0, len(rows))
		for _, m := range rows {
			resp = append(resp, toResponse(m))
		}
		return c.JSON(resp)
	}
}

// PUT /api/correspondence/messages/:id/archive
func ArchiveMessageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var msg models.Correspondence
		if err := database.DB.First(&msg, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mesaj bulunamadı")
		}

		// Sadece gönderen veya alıcı arşivleyebilir
		if msg.SenderID != userID && (msg.ReceiverID == nil || *msg.ReceiverID != userID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
		}

		if err := database.DB.Model(&msg).Update("is_archived", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesaj arşivlenemedi")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/correspondence/leave-requests
func CreateLeaveRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLeaveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Subject = strings.TrimSpace(body.Subject)
		if body.Subject == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Konu zorunlu")
		}

		start, err := time.Parse("2006-01-02", body.LeaveStart)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "leave_start formatı 'YYYY-MM-DD' olmalı")
		}
		end, err := time.Parse("2006-01-02", body.LeaveEnd)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "leave_end formatı 'YYYY-MM-DD' olmalı")
		}
		if end.Before(start) {
			return fiber.NewError(fiber.StatusBadRequest, "İzin bitişi başlangıçtan önce olamaz")
		}

		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		req := models.Correspondence{
			SenderID:    userID,
			Kind:        models.CorrespondenceLeaveRequest,
			Subject:     body.Subject,
			Body:        body.Body,
			LeaveStatus: models.LeaveStatusPending,
			LeaveStart:  &start,
			LeaveEnd:    &end,
		}

		if err := database.DB.Create(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İzin talebi kaydedilemedi")
		}

		database.DB.Preload("Sender").First(&req, req.ID)
		return c.Status(fiber.StatusCreated).JSON(toResponse(req))
	}
}

// GET /api/correspondence/leave-requests?status=pending
func ListLeaveRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := auth.CurrentRole(c)
		if err != nil {
			return err
		}
		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Correspondence{}).
			Preload("Sender").
			Where("kind = ? AND is_deleted = ?", models.CorrespondenceLeaveRequest, false)

		// Merkez tüm talepleri görür, personel sadece kendininkini
		if !role.IsHeadOffice() {
			dbq = dbq.Where("sender_id = ?", userID)
		}

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("leave_status = ?", status)
		}

		var rows []models.Correspondence
		if err := dbq.Order("created_at desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İzin talepleri listelenemedi")
		}

		resp := make([]CorrespondenceResponse, 0, len(rows))
		for _, m := range rows {
			resp = append(resp, toResponse(m))
		}
		return c.JSON(resp)
	}
}

// PUT /api/correspondence/leave-requests/:id/review (merkez)
func ReviewLeaveRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var body ReviewLeaveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		status := models.LeaveStatus(body.Status)
		if status != models.LeaveStatusApproved && status != models.LeaveStatusRejected {
			return fiber.NewError(fiber.StatusBadRequest, "status geçersiz, 'approved' veya 'rejected' olmalı")
		}

		var req models.Correspondence
		if err := database.DB.Preload("Sender").
			First(&req, "id = ? AND kind = ? AND is_deleted = ?", id, models.CorrespondenceLeaveRequest, false).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İzin talebi bulunamadı")
		}
		if req.LeaveStatus != models.LeaveStatusPending {
			return fiber.NewError(fiber.StatusBadRequest, "Talep zaten sonuçlandırılmış")
		}

		if err := database.DB.Model(&req).Update("leave_status", status).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İzin talebi güncellenemedi")
		}
		req.LeaveStatus = status

		actorID, actorName, actorBranch, aErr := auth.CurrentUser(c)
		if aErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				BranchID:    actorBranch,
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "correspondence",
				EntityID:    req.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("İzin talebi %s: %s", status, req.Sender.Username),
				Before:      fiber.Map{"leave_status": models.LeaveStatusPending},
				After:       fiber.Map{"leave_status": status, "notes": body.Notes},
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(toResponse(req))
	}
}
