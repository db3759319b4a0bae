package models

// UnreadEvent is emitted by the unread watcher whenever a group's count
// is recomputed. It is transient and never persisted.
type UnreadEvent struct {
	GroupID uint  `json:"group_id"`
	Count   int64 `json:"count"`
}
