package ws

// MessageGroupRead marks a group as read for the connected user, the
// same operation as POST /groups/:id/read but without an extra round
// trip while the conversation is open.
type MessageGroupRead struct {
	GroupID uint `json:"group_id"`
}

func (msg *MessageGroupRead) GetType() string {
	return "group_read"
}

func (msg *MessageGroupRead) Process(ctx *MessageContext) error {
	if msg.GroupID == 0 {
		return SendError(ctx.Conn, "invalid_group", "group_id is required", "")
	}

	if err := ctx.ChatService.MarkGroupRead(ctx.UserID, msg.GroupID); err != nil {
		return SendError(ctx.Conn, "mark_read_failed", "Failed to mark group as read", err.Error())
	}

	return ctx.Conn.WriteJSON(map[string]interface{}{
		"type":     "group_read_ack",
		"group_id": msg.GroupID,
	})
}
