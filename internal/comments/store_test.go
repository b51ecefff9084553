package comments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecast/internal/identity"
)

type fakeRemote struct {
	mu      sync.Mutex
	enabled bool
	fail    bool
	threads []Thread
	calls   []string
}

func (f *fakeRemote) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if f.fail {
		return errors.New("remote unavailable")
	}
	return nil
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) Enabled() bool { return f.enabled }

func (f *fakeRemote) ListThreads(_ context.Context, sceneFilter string) ([]Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("remote unavailable")
	}
	var out []Thread
	for _, t := range f.threads {
		if sceneFilter == "" || strings.HasPrefix(t.SceneID, sceneFilter+"/") {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRemote) InsertThread(context.Context, Thread) error { return f.record("insert_thread") }
func (f *fakeRemote) InsertReply(context.Context, Reply) error   { return f.record("insert_reply") }
func (f *fakeRemote) UpdateThreadStatus(context.Context, string, Status) error {
	return f.record("update_thread_status")
}
func (f *fakeRemote) UpdateThreadMessage(context.Context, string, string) error {
	return f.record("update_thread_message")
}
func (f *fakeRemote) UpdateReplyMessage(context.Context, string, string) error {
	return f.record("update_reply_message")
}
func (f *fakeRemote) DeleteThread(context.Context, string) error { return f.record("delete_thread") }
func (f *fakeRemote) DeleteReply(context.Context, string) error  { return f.record("delete_reply") }

var tester = identity.Author{ID: "u1", Name: "Tess Ter", Initials: "TT"}

func TestCreateThreadLifecycle(t *testing.T) {
	s := NewStore()

	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "hi", Author: tester})
	require.NotNil(t, th)

	assert.Equal(t, StatusOpen, th.Status)
	assert.Empty(t, th.Replies)
	assert.NotEmpty(t, th.ID)
	assert.Equal(t, th.ID, s.ActiveThread())

	s.ToggleStatus(th.ID)
	assert.Equal(t, StatusResolved, s.Thread(th.ID).Status)

	s.ToggleStatus(th.ID)
	assert.Equal(t, StatusOpen, s.Thread(th.ID).Status)

	s.SetStatus(th.ID, StatusResolved)
	assert.Equal(t, StatusResolved, s.Thread(th.ID).Status)
}

func TestCreateThreadValidation(t *testing.T) {
	s := NewStore()

	assert.Nil(t, s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "   "}))
	assert.Nil(t, s.CreateThread(CreateThreadInput{
		SceneID: "s1",
		Message: strings.Repeat("x", MaxMessageLen+1),
	}))
	assert.Empty(t, s.AllThreads())
}

func TestReplyAppendsInOrder(t *testing.T) {
	s := NewStore()
	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "root", Author: tester})

	first := s.ReplyTo(th.ID, "one", tester)
	second := s.ReplyTo(th.ID, "two", tester)
	require.NotNil(t, first)
	require.NotNil(t, second)

	replies := s.Thread(th.ID).Replies
	require.Len(t, replies, 2)
	assert.Equal(t, "one", replies[0].Message)
	assert.Equal(t, "two", replies[1].Message)
	assert.Equal(t, th.ID, replies[0].CommentID)
}

func TestReplyToMissingThreadIsNil(t *testing.T) {
	s := NewStore()

	assert.Nil(t, s.ReplyTo("no-such-thread", "hello", tester))
}

func TestDeleteThreadClearsReferences(t *testing.T) {
	s := NewStore()
	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "hi", Author: tester})
	s.OpenPopover(th.ID)

	s.DeleteThread(th.ID)

	assert.Nil(t, s.Thread(th.ID))
	assert.Empty(t, s.ActivePopover())
	assert.Empty(t, s.ActiveThread())
}

func TestDeleteReply(t *testing.T) {
	s := NewStore()
	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "hi", Author: tester})
	r := s.ReplyTo(th.ID, "bye", tester)

	s.DeleteReply(r.ID)

	assert.Empty(t, s.Thread(th.ID).Replies)
}

func TestUpdateMessages(t *testing.T) {
	s := NewStore()
	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "hi", Author: tester})
	r := s.ReplyTo(th.ID, "first", tester)

	s.UpdateThreadMessage(th.ID, "edited")
	s.UpdateReplyMessage(r.ID, "also edited")

	got := s.Thread(th.ID)
	assert.Equal(t, "edited", got.Message)
	assert.Equal(t, "also edited", got.Replies[0].Message)

	// Invalid replacement text leaves the message alone.
	s.UpdateThreadMessage(th.ID, "  ")
	assert.Equal(t, "edited", s.Thread(th.ID).Message)
}

func TestPopoverExclusivity(t *testing.T) {
	s := NewStore()
	a := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "a", Author: tester})
	b := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "b", Author: tester})

	s.OpenPopover(a.ID)
	assert.Equal(t, a.ID, s.ActivePopover())

	s.OpenPopover(b.ID)
	assert.Equal(t, b.ID, s.ActivePopover())

	s.ClosePopover()
	assert.Empty(t, s.ActivePopover())

	s.OpenPopover("absent")
	assert.Empty(t, s.ActivePopover())
}

func TestOptimisticStateSurvivesRemoteFailure(t *testing.T) {
	remote := &fakeRemote{enabled: true, fail: true}
	s := NewStore(WithRemote(remote))

	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "hi", Author: tester})
	require.NotNil(t, th)
	s.ReplyTo(th.ID, "reply", tester)
	s.ToggleStatus(th.ID)
	s.waitRemote()

	// Every write failed remotely; local state is authoritative anyway.
	got := s.Thread(th.ID)
	require.NotNil(t, got)
	assert.Len(t, got.Replies, 1)
	assert.Equal(t, StatusResolved, got.Status)
	assert.Equal(t, 3, remote.callCount())
}

func TestDisabledRemoteSkipsDispatch(t *testing.T) {
	remote := &fakeRemote{enabled: false}
	s := NewStore(WithRemote(remote))

	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "hi", Author: tester})
	s.ReplyTo(th.ID, "reply", tester)
	s.waitRemote()

	assert.Zero(t, remote.callCount())
}

func TestNamespaceIsolation(t *testing.T) {
	remote := &fakeRemote{enabled: true}

	courseA := NewStore(WithRemote(remote), WithNamespace("courseA"))
	thA := courseA.CreateThread(CreateThreadInput{SceneID: "s1", Message: "from A", Author: tester})
	require.NotNil(t, thA)
	courseA.waitRemote()

	// Seed the shared remote the way the store writes it, plus a foreign row.
	remote.mu.Lock()
	remote.threads = []Thread{
		{ID: "ta", SceneID: "courseA/s1", Message: "from A", Status: StatusOpen},
		{ID: "tb", SceneID: "courseB/s1", Message: "from B", Status: StatusOpen},
		{ID: "tc", SceneID: "unprefixed", Message: "stray", Status: StatusOpen},
	}
	remote.mu.Unlock()

	courseB := NewStore(WithRemote(remote), WithNamespace("courseB"))
	require.NoError(t, courseB.Load(context.Background()))

	all := courseB.AllThreads()
	require.Len(t, all, 1)
	assert.Equal(t, "from B", all[0].Message)
	// Prefix is stripped on read.
	assert.Equal(t, "s1", all[0].SceneID)
}

func TestThreadsFiltersByScene(t *testing.T) {
	s := NewStore()
	s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "a", Author: tester})
	s.CreateThread(CreateThreadInput{SceneID: "s2", Message: "b", Author: tester})
	s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "c", Author: tester})

	assert.Len(t, s.Threads("s1"), 2)
	assert.Len(t, s.Threads("s2"), 1)
	assert.Empty(t, s.Threads("s3"))
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := NewStore()
	th := s.CreateThread(CreateThreadInput{SceneID: "s1", Message: "hi", Author: tester})

	got := s.Thread(th.ID)
	got.Message = "mutated by caller"
	got.Replies = append(got.Replies, Reply{ID: "fake"})

	assert.Equal(t, "hi", s.Thread(th.ID).Message)
	assert.Empty(t, s.Thread(th.ID).Replies)
}
