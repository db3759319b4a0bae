package ws

// MessagePing is a client keepalive. Nonce, when set, is echoed in the
// pong so the client can measure round-trip time.
type MessagePing struct {
	Nonce string `json:"nonce,omitempty"`
}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	return ctx.Conn.WriteJSON(map[string]string{
		"type":  "pong",
		"nonce": msg.Nonce,
	})
}

// MessagePong is a pong response (in case client wants to track latency)
type MessagePong struct {
}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(ctx *MessageContext) error {
	// No-op - just acknowledge
	return nil
}
