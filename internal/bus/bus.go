// Package bus is the in-process publish/subscribe channel between
// otherwise-decoupled parts of the player: config patches, comment panel
// focus, and dirty-state signals all flow through typed topics here.
package bus

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Topic identifies one event stream.
type Topic string

const (
	TopicSceneConfigPatched Topic = "scene-config-patched"
	TopicCommentOpenPanel   Topic = "scene-comment-open-panel"
	TopicCommentFocus       Topic = "scene-comment-focus"
	TopicThemeConfigDirty   Topic = "theme-config-dirty"
)

// SceneConfigPatched announces that a scene's configuration changed,
// carrying the full post-merge snapshot.
type SceneConfigPatched struct {
	SceneID string
	Config  any
}

// CommentOpenPanel asks the comment panel to open on a thread.
type CommentOpenPanel struct {
	ThreadID string
}

// CommentFocus asks the scene to scroll/flash a thread's pin.
type CommentFocus struct {
	ThreadID string
}

// ThemeConfigDirty signals whether any edit session holds unsaved changes.
type ThemeConfigDirty struct {
	Dirty bool
}

const subscriberBuffer = 16

type subscriber struct {
	id int
	ch chan any
}

// Bus fans events out to per-topic subscribers. Publish never blocks:
// a subscriber that has fallen subscriberBuffer events behind drops the
// event. Subscribers must tolerate events that reference already
// torn-down state.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic][]*subscriber
}

func New() *Bus {
	return &Bus{subs: make(map[Topic][]*subscriber)}
}

// Subscribe returns a receive channel for the topic and a cancel func.
// Cancel closes the channel and detaches the subscriber; it is safe to
// call more than once.
func (b *Bus) Subscribe(topic Topic) (<-chan any, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscriber{id: b.nextID, ch: make(chan any, subscriberBuffer)}
	b.subs[topic] = append(b.subs[topic], sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[topic]
			for i, s := range list {
				if s.id == sub.id {
					b.subs[topic] = append(list[:i], list[i+1:]...)
					break
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers payload to every current subscriber of the topic.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- payload:
		default:
			log.Debug().Str("topic", string(topic)).Msg("bus subscriber full, event dropped")
		}
	}
}
