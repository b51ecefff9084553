// Package comments holds the annotation layer of the player: comment
// threads anchored to scenes, the composer for drafting new comments, and
// the popover cursor, reconciled optimistically against an optional
// remote store.
package comments

import (
	"strings"
	"time"

	"github.com/scenecast/internal/geometry"
	"github.com/scenecast/internal/identity"
)

// Status of a thread.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// MaxMessageLen caps comment and reply bodies; longer input is rejected
// before any state mutation or network call.
const MaxMessageLen = 2000

// Position pairs the two coordinate spaces captured when a comment is
// placed. Once set it is immutable; only on-screen card placement is ever
// recomputed (see geometry.PlaceCard).
type Position struct {
	Viewport geometry.Point `json:"viewport"`
	Surface  geometry.Point `json:"surface"`
}

// Reply is one message in a thread, append-only through the public API.
type Reply struct {
	ID        string          `json:"id"`
	CommentID string          `json:"commentId"`
	Message   string          `json:"message"`
	Author    identity.Author `json:"author"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Thread is a root comment with its replies, anchored to a scene and
// optionally to a specific element within it.
type Thread struct {
	ID          string          `json:"id"`
	SceneID     string          `json:"sceneId"`
	ElementID   string          `json:"elementId,omitempty"`
	TargetLabel string          `json:"targetLabel,omitempty"`
	Message     string          `json:"message"`
	Author      identity.Author `json:"author"`
	Status      Status          `json:"status"`
	Position    *Position       `json:"position,omitempty"`
	Replies     []Reply         `json:"replies"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Composer is the transient state for a comment being drafted. At most
// one exists per store.
type Composer struct {
	SceneID     string    `json:"sceneId"`
	ElementID   string    `json:"elementId,omitempty"`
	TargetLabel string    `json:"targetLabel,omitempty"`
	Position    *Position `json:"position,omitempty"`
}

// CreateThreadInput carries everything needed to open a new thread.
type CreateThreadInput struct {
	SceneID     string
	ElementID   string
	TargetLabel string
	Message     string
	Position    *Position
	Author      identity.Author
}

// ValidMessage reports whether a comment body passes input validation:
// non-empty after trimming and within the length cap.
func ValidMessage(msg string) bool {
	trimmed := strings.TrimSpace(msg)
	return trimmed != "" && len(trimmed) <= MaxMessageLen
}

func cloneThread(t *Thread) Thread {
	out := *t
	out.Replies = make([]Reply, len(t.Replies))
	copy(out.Replies, t.Replies)
	if t.Position != nil {
		pos := *t.Position
		out.Position = &pos
	}
	return out
}
