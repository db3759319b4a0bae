package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trangpham2601/group-task-manager/internal/httpx"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/service"
	"github.com/trangpham2601/group-task-manager/internal/validation"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type SendMessageRequest struct {
	ClientID string `json:"client_id"`
	Content  string `json:"content"`
}

// Send appends a message to the group log and fans it out.
// POST /api/groups/:id/messages
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	content := validation.TrimAndLimit(req.Content, validation.MaxMessageLength())
	if content == "" {
		return httpx.BadRequest(c, "empty_message", "Message content is required")
	}

	message, err := h.chatService.SendGroupMessage(userID, uint(groupID), req.ClientID, content)
	if err != nil {
		return groupError(c, err, "message_send_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// History returns a page of the group log, newest first. The cursor is
// the smallest message id from the previous page.
// GET /api/groups/:id/messages?cursor=&limit=
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	cursor := c.QueryInt("cursor", 0)
	limit := c.QueryInt("limit", 50)

	messages, err := h.chatService.GetGroupMessages(userID, uint(groupID), uint(cursor), limit)
	if err != nil {
		return groupError(c, err, "message_history_failed")
	}

	out := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, messages[i].ToResponse())
	}
	return c.JSON(fiber.Map{"messages": out})
}

// MarkRead records the caller's read point for the group at server time
// and flushes their pending notifications for it.
// POST /api/groups/:id/read
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	if err := h.chatService.MarkGroupRead(userID, uint(groupID)); err != nil {
		return groupError(c, err, "mark_read_failed")
	}
	return c.JSON(fiber.Map{"read": true})
}

// Unread returns the caller's unread count for one group.
// GET /api/groups/:id/unread
func (h *ChatHandler) Unread(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	return c.JSON(fiber.Map{
		"group_id": groupID,
		"unread":   h.chatService.GetUnreadCount(uint(groupID), userID),
	})
}

// TotalUnread returns the aggregate badge count across all the caller's
// groups.
// GET /api/me/unread
func (h *ChatHandler) TotalUnread(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	return c.JSON(fiber.Map{"unread": h.chatService.GetTotalUnread(userID)})
}

// ReadState exposes the caller's read marker for a group; "read_at" is
// null when the group has never been read.
// GET /api/groups/:id/read-state
func (h *ChatHandler) ReadState(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	pos, err := h.chatService.GetReadPosition(uint(groupID), userID)
	if err != nil {
		return groupError(c, err, "read_state_failed")
	}
	if pos == nil {
		return c.JSON(fiber.Map{"group_id": groupID, "read_at": nil})
	}
	return c.JSON(fiber.Map{"group_id": groupID, "read_at": pos.LastReadAt})
}

// Notifications lists the caller's pending notification records.
// GET /api/me/notifications
func (h *ChatHandler) Notifications(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}

	limit := c.QueryInt("limit", 50)
	records, err := h.chatService.ListNotifications(userID, limit)
	if err != nil {
		return httpx.Internal(c, "notifications_list_failed")
	}
	return c.JSON(fiber.Map{
		"notifications": records,
		"pending_total": h.chatService.CountNotifications(userID),
	})
}
