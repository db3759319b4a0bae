package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/httpx"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/service"
	"github.com/trangpham2601/group-task-manager/internal/validation"
)

type GroupHandler struct {
	groupService *service.GroupService
	chatService  *service.ChatService
}

func NewGroupHandler(groupService *service.GroupService, chatService *service.ChatService) *GroupHandler {
	return &GroupHandler{groupService: groupService, chatService: chatService}
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create makes a new group with the caller as admin member.
// POST /api/groups
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	name := validation.TrimAndLimit(req.Name, validation.MaxGroupNameLength)
	if name == "" {
		return httpx.BadRequest(c, "invalid_name", "Group name is required")
	}

	group, err := h.groupService.CreateGroup(userID, name, validation.TrimAndLimit(req.Description, validation.MaxDescriptionLength))
	if err != nil {
		return httpx.Internal(c, "group_create_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

// List returns the caller's groups with per-group unread counts, the
// payload a conversation list renders badges from.
// GET /api/groups
func (h *GroupHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		return httpx.Internal(c, "group_list_failed")
	}

	type groupWithUnread struct {
		models.Group
		UnreadCount int64 `json:"unread_count"`
	}

	out := make([]groupWithUnread, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupWithUnread{
			Group:       g,
			UnreadCount: h.chatService.GetUnreadCount(g.ID, userID),
		})
	}

	return c.JSON(fiber.Map{"groups": out})
}

// Get returns one group the caller belongs to.
// GET /api/groups/:id
func (h *GroupHandler) Get(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	group, err := h.groupService.GetGroup(uint(groupID), userID)
	if err != nil {
		return groupError(c, err, "group_get_failed")
	}
	return c.JSON(group)
}

// Join adds the caller as a member.
// POST /api/groups/:id/join
func (h *GroupHandler) Join(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	if err := h.groupService.JoinGroup(uint(groupID), userID); err != nil {
		return groupError(c, err, "group_join_failed")
	}
	return c.JSON(fiber.Map{"joined": true})
}

// Leave removes the caller from the group.
// POST /api/groups/:id/leave
func (h *GroupHandler) Leave(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	if err := h.groupService.LeaveGroup(uint(groupID), userID); err != nil {
		return groupError(c, err, "group_leave_failed")
	}
	return c.JSON(fiber.Map{"left": true})
}

// Members lists the group's members.
// GET /api/groups/:id/members
func (h *GroupHandler) Members(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	members, err := h.groupService.GetMembers(uint(groupID), userID)
	if err != nil {
		return groupError(c, err, "group_members_failed")
	}

	out := make([]models.UserResponse, 0, len(members))
	for i := range members {
		out = append(out, members[i].ToResponse())
	}
	return c.JSON(fiber.Map{"members": out})
}

func groupError(c *fiber.Ctx, err error, fallbackCode string) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return httpx.NotFound(c, "group_not_found", "Group not found")
	case errors.Is(err, apperr.ErrPermissionDenied):
		return httpx.Forbidden(c, "not_a_member", "Not a member of this group")
	default:
		return httpx.Internal(c, fallbackCode)
	}
}
