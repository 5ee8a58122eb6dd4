package diagnosticsserver

import (
	"encoding/json"
	"time"

	"github.com/lox/idleplanner/sdk/planner"
)

// MessageType names the single event kind this one-way stream emits.
// Unlike the teacher's client/server protocol there is nothing to
// dispatch on yet, but the envelope keeps the same shape so a second
// event kind (e.g. a boundary alert) can be added without breaking
// existing viewers.
type MessageType string

const MessageTypeSnapshot MessageType = "snapshot"

// Message is the wire envelope every snapshot is sent in, grounded on
// internal/server/message.go's Message{Type, Data, Timestamp}.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage mirrors internal/server.NewMessage: marshal data, stamp
// the current time.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Data: raw, Timestamp: time.Now()}, nil
}

// SnapshotData is the JSON shape of a published planner.Profile. It
// flattens Profile's fields rather than embedding it directly so the
// wire format doesn't change shape if Profile ever grows
// diagnostics-internal fields no viewer needs.
type SnapshotData struct {
	ExpandedNodes    int            `json:"expandedNodes"`
	EnqueuedNodes    int            `json:"enqueuedNodes"`
	BestCredits      int            `json:"bestCredits"`
	FrontierInserted int            `json:"frontierInserted"`
	FrontierRemoved  int            `json:"frontierRemoved"`
	BucketUniqueness float64        `json:"bucketUniqueness"`
	Replans          int            `json:"replans"`
	ReplanCategories map[string]int `json:"replanCategories,omitempty"`
	WallTimeMS       int64          `json:"wallTimeMs"`
}

// SnapshotDataFromProfile converts a planner.Profile into its wire
// shape, matching internal/server/message.go's PlayerStateFromGame
// style of one conversion function per message payload.
func SnapshotDataFromProfile(p planner.Profile) SnapshotData {
	return SnapshotData{
		ExpandedNodes:    p.ExpandedNodes,
		EnqueuedNodes:    p.EnqueuedNodes,
		BestCredits:      p.BestCredits,
		FrontierInserted: p.FrontierInserted,
		FrontierRemoved:  p.FrontierRemoved,
		BucketUniqueness: p.BucketUniqueness,
		Replans:          p.Replans,
		ReplanCategories: p.ReplanCategories,
		WallTimeMS:       p.WallTime.Milliseconds(),
	}
}
