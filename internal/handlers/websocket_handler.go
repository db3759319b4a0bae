package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/handlers/ws"
	"github.com/trangpham2601/group-task-manager/internal/httpx"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/notify"
	"github.com/trangpham2601/group-task-manager/internal/repository"
	"github.com/trangpham2601/group-task-manager/internal/service"
	"github.com/trangpham2601/group-task-manager/internal/unread"
)

// WebSocketHandler owns the live connection lifecycle. Each connection
// gets its own presenter and unread subscription, created on upgrade and
// released on close; nothing survives the socket.
type WebSocketHandler struct {
	hub         *ws.Hub
	chatService *service.ChatService
	watcher     *unread.Watcher
	userRepo    repository.UserRepositoryInterface
	notifRepo   repository.NotificationRepositoryInterface
	bus         events.Bus
}

func NewWebSocketHandler(
	hub *ws.Hub,
	chatService *service.ChatService,
	watcher *unread.Watcher,
	userRepo repository.UserRepositoryInterface,
	notifRepo repository.NotificationRepositoryInterface,
	bus events.Bus,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		chatService: chatService,
		watcher:     watcher,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		bus:         bus,
	}
}

// UpgradeRequired gates the route to genuine upgrade requests.
func (h *WebSocketHandler) UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return httpx.BadRequest(c, "upgrade_required", "WebSocket upgrade required")
	}
}

// Handle runs one connection: registers it with the hub, starts the
// per-connection presenter and unread subscription, then reads frames
// until the peer goes away.
func (h *WebSocketHandler) Handle() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			conn.Close()
			return
		}

		h.hub.Register(userID, conn)
		defer h.hub.Unregister(userID)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		presenter := notify.NewPresenter(userID, h.userRepo, h.notifRepo, h.bus, &hubDisplayer{hub: h.hub})
		if err := presenter.Start(ctx); err != nil {
			log.Printf("ws: starting presenter for user %d: %v", userID, err)
		}
		defer presenter.Stop()

		sub, err := h.watcher.Subscribe(ctx, userID)
		if err != nil {
			log.Printf("ws: unread subscription for user %d: %v", userID, err)
		} else {
			defer sub.Close()
			go h.forwardUnread(userID, sub)
		}

		msgCtx := &ws.MessageContext{
			UserID:      userID,
			Conn:        conn,
			Hub:         h.hub,
			ChatService: h.chatService,
		}

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}

			msg, err := ws.Deserialize(raw)
			if err != nil {
				if sendErr := ws.SendError(conn, "bad_message", "Unparseable message", err.Error()); sendErr != nil {
					return
				}
				continue
			}

			if err := msg.Process(msgCtx); err != nil {
				log.Printf("ws: processing %s for user %d: %v", msg.GetType(), userID, err)
			}
		}
	})
}

// forwardUnread pushes unread events from the subscription to the live
// connection. Exits when the subscription channel closes.
func (h *WebSocketHandler) forwardUnread(userID uint, sub *unread.Subscription) {
	for event := range sub.Events() {
		if err := h.hub.SendToUser(userID, map[string]interface{}{
			"type":     "unread_update",
			"group_id": event.GroupID,
			"unread":   event.Count,
		}); err != nil {
			// Offline or dead socket; the subscription is torn down by the
			// connection's deferred close.
			return
		}
	}
}

// hubDisplayer presents notification records over the user's live
// websocket connection.
type hubDisplayer struct {
	hub *ws.Hub
}

func (d *hubDisplayer) Present(userID uint, record models.NotificationRecord) error {
	return d.hub.SendToUser(userID, map[string]interface{}{
		"type":        "notification",
		"group_id":    record.GroupID,
		"group_name":  record.GroupName,
		"sender_id":   record.SenderID,
		"sender_name": record.SenderName,
		"message":     record.Message,
		"record_type": record.Type,
		"created_at":  record.CreatedAt,
	})
}
