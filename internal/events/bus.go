// Package events carries change signals between the store writers and the
// standing subscriptions (unread watcher, notification presenter). A Bus
// replaces per-callback listener bookkeeping with one typed channel and
// one idempotent cancel func per subscription.
package events

import (
	"context"
	"strconv"
)

// GroupsChanged is published on any group document write (create, join,
// leave, read mark). Watchers treat every delivery as a wake-up and
// recompute; spurious wake-ups for groups the subscriber is not in are
// expected and harmless.
const GroupsChanged = "groups.changed"

// UserNotifications is the per-recipient channel carrying freshly created
// notification records.
func UserNotifications(userID uint) string {
	return "notify.user." + strconv.FormatUint(uint64(userID), 10)
}

type Bus interface {
	// Publish delivers payload to current subscribers of channel.
	// Delivery is best-effort; a slow subscriber's buffer overflowing
	// drops the signal rather than blocking the publisher.
	Publish(channel string, payload []byte) error

	// Subscribe opens a standing subscription. The returned cancel func
	// releases the subscription and is safe to call more than once;
	// after cancellation the channel is closed.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}
