package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan any) any {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(TopicSceneConfigPatched)
	defer cancel()

	b.Publish(TopicSceneConfigPatched, SceneConfigPatched{SceneID: "intro"})

	got := recv(t, ch).(SceneConfigPatched)
	assert.Equal(t, "intro", got.SceneID)
}

func TestTopicsAreIsolated(t *testing.T) {
	b := New()
	focus, cancelFocus := b.Subscribe(TopicCommentFocus)
	defer cancelFocus()

	b.Publish(TopicCommentOpenPanel, CommentOpenPanel{ThreadID: "t1"})

	select {
	case v := <-focus:
		t.Fatalf("unexpected event on focus topic: %v", v)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(TopicThemeConfigDirty)

	cancel()
	cancel() // second cancel is a no-op

	_, open := <-ch
	require.False(t, open)

	// Publishing after cancel must not panic or deliver.
	b.Publish(TopicThemeConfigDirty, ThemeConfigDirty{Dirty: true})
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	b := New()
	_, cancel := b.Subscribe(TopicCommentFocus)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(TopicCommentFocus, CommentFocus{ThreadID: "t"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestMultipleSubscribers(t *testing.T) {
	b := New()
	a, cancelA := b.Subscribe(TopicCommentOpenPanel)
	defer cancelA()
	c, cancelC := b.Subscribe(TopicCommentOpenPanel)
	defer cancelC()

	b.Publish(TopicCommentOpenPanel, CommentOpenPanel{ThreadID: "t9"})

	assert.Equal(t, CommentOpenPanel{ThreadID: "t9"}, recv(t, a))
	assert.Equal(t, CommentOpenPanel{ThreadID: "t9"}, recv(t, c))
}
