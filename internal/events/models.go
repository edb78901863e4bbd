package events

import "time"

type EventType string

const (
	EventTypeCreated           EventType = "created"
	EventTypeUpdated           EventType = "updated"
	EventTypePermissionChanged EventType = "permission-changed"
	EventTypeMoved             EventType = "moved"
	EventTypeDeleted           EventType = "deleted"
)

// ChangeEvent is the content lifecycle record emitted by the repository.
// Sequence numbers are non-decreasing per item; nothing is guaranteed
// across items. BodyText is null on events that do not touch the body
// (permission-changed, moved) and the indexed body is kept as is.
type ChangeEvent struct {
	ItemID    string    `json:"itemId"`
	Type      EventType `json:"type"`
	Sequence  int64     `json:"sequence"`
	OwnerID   string    `json:"ownerId"`
	SiteID    *string   `json:"siteId"`
	BodyText  *string   `json:"bodyText"`
	Name      string    `json:"name,omitempty"`
	IsFile    bool      `json:"isFile,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Valid reports whether the event carries the minimum fields the index
// writer needs. Invalid events are dropped with a warning, never fatal
// to the stream.
func (e ChangeEvent) Valid() bool {
	if e.ItemID == "" || e.Sequence <= 0 {
		return false
	}
	switch e.Type {
	case EventTypeCreated, EventTypeUpdated, EventTypePermissionChanged, EventTypeMoved, EventTypeDeleted:
		return true
	default:
		return false
	}
}

// IndexedEvent is the outbound notification emitted after a change event
// is committed to the index.
type IndexedEvent struct {
	ItemID   string `json:"item_id"`
	Sequence int64  `json:"sequence"`
	Deleted  bool   `json:"deleted"`
}

// IngestFailureEvent is the outbound notification emitted when a change
// event exhausts its retry budget. The item stays in its last-known-good
// indexed state.
type IngestFailureEvent struct {
	ItemID   string `json:"item_id"`
	Sequence int64  `json:"sequence"`
	Reason   string `json:"reason"`
}
