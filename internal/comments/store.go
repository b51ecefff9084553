package comments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/scenecast/internal/identity"
)

// Store is the single shared comment state for all mounted scenes. Every
// operation is optimistic: local state mutates synchronously under one
// mutex (run-to-completion per operation), then the matching remote write
// dispatches asynchronously when a Remote is configured.
type Store struct {
	mu sync.Mutex

	threads       []*Thread
	activeThread  string
	activePopover string
	composer      *Composer
	commentMode   bool

	namespace string
	remote    Remote
	limiter   *rate.Limiter
	inflight  sync.WaitGroup

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRemote attaches the optional persistence collaborator.
func WithRemote(r Remote) Option {
	return func(s *Store) { s.remote = r }
}

// WithNamespace partitions this store's threads from other content sets
// sharing the same remote. Scene ids are stored as "namespace/sceneID".
func WithNamespace(ns string) Option {
	return func(s *Store) { s.namespace = ns }
}

// WithWriteLimit overrides the outbound write rate limiter.
func WithWriteLimit(l *rate.Limiter) Option {
	return func(s *Store) { s.limiter = l }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		limiter: defaultWriteLimiter(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// qualify prefixes a scene id with the namespace for storage.
func (s *Store) qualify(sceneID string) string {
	if s.namespace == "" {
		return sceneID
	}
	return s.namespace + "/" + sceneID
}

// unqualify strips the namespace prefix. The second return is false for
// ids from a different namespace; those rows are filtered out, not
// treated as corrupt.
func (s *Store) unqualify(stored string) (string, bool) {
	if s.namespace == "" {
		return stored, true
	}
	prefix := s.namespace + "/"
	if !strings.HasPrefix(stored, prefix) {
		return "", false
	}
	return strings.TrimPrefix(stored, prefix), true
}

// Load replaces local state with the remote's threads for this
// namespace. Without an enabled Remote the store stays in-memory and
// Load is a no-op.
func (s *Store) Load(ctx context.Context) error {
	if !s.remoteEnabled() {
		return nil
	}

	stored, err := s.remote.ListThreads(ctx, s.namespace)
	if err != nil {
		return fmt.Errorf("failed to list remote threads: %w", err)
	}

	var threads []*Thread
	for i := range stored {
		sceneID, ok := s.unqualify(stored[i].SceneID)
		if !ok {
			continue
		}
		t := cloneThread(&stored[i])
		t.SceneID = sceneID
		threads = append(threads, &t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = threads
	s.activeThread = ""
	s.activePopover = ""
	return nil
}

// CreateThread opens a new thread, prepends it locally, marks it active,
// and dispatches the remote insert. Returns nil when the message fails
// validation. Ordering of the returned list is a view-level concern.
func (s *Store) CreateThread(input CreateThreadInput) *Thread {
	if !ValidMessage(input.Message) {
		return nil
	}

	now := s.now().UTC()
	t := &Thread{
		ID:          uuid.NewString(),
		SceneID:     input.SceneID,
		ElementID:   input.ElementID,
		TargetLabel: input.TargetLabel,
		Message:     strings.TrimSpace(input.Message),
		Author:      input.Author,
		Status:      StatusOpen,
		Position:    input.Position,
		Replies:     []Reply{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.threads = append([]*Thread{t}, s.threads...)
	s.activeThread = t.ID
	snapshot := cloneThread(t)
	s.mu.Unlock()

	remote := snapshot
	remote.SceneID = s.qualify(snapshot.SceneID)
	s.dispatch("insert_thread", func(ctx context.Context) error {
		return s.remote.InsertThread(ctx, remote)
	})

	out := snapshot
	return &out
}

// ReplyTo appends a reply to the matching thread and dispatches the
// remote insert. A nil return means the thread is absent — a normal
// outcome (e.g. it was deleted moments ago), not a failure — or that the
// message failed validation.
func (s *Store) ReplyTo(threadID, message string, author identity.Author) *Reply {
	if !ValidMessage(message) {
		return nil
	}

	s.mu.Lock()
	t := s.findLocked(threadID)
	if t == nil {
		s.mu.Unlock()
		return nil
	}

	now := s.now().UTC()
	r := Reply{
		ID:        uuid.NewString(),
		CommentID: threadID,
		Message:   strings.TrimSpace(message),
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.Replies = append(t.Replies, r)
	t.UpdatedAt = now
	s.mu.Unlock()

	s.dispatch("insert_reply", func(ctx context.Context) error {
		return s.remote.InsertReply(ctx, r)
	})

	out := r
	return &out
}

// ToggleStatus flips open and resolved.
func (s *Store) ToggleStatus(threadID string) {
	s.setStatus(threadID, nil)
}

// SetStatus forces a thread to an explicit status.
func (s *Store) SetStatus(threadID string, status Status) {
	s.setStatus(threadID, &status)
}

func (s *Store) setStatus(threadID string, explicit *Status) {
	s.mu.Lock()
	t := s.findLocked(threadID)
	if t == nil {
		s.mu.Unlock()
		return
	}

	next := StatusOpen
	if explicit != nil {
		next = *explicit
	} else if t.Status == StatusOpen {
		next = StatusResolved
	}
	t.Status = next
	t.UpdatedAt = s.now().UTC()
	s.mu.Unlock()

	s.dispatch("update_thread_status", func(ctx context.Context) error {
		return s.remote.UpdateThreadStatus(ctx, threadID, next)
	})
}

// DeleteThread removes the thread locally and clears any active-thread
// or popover reference pointing at it.
func (s *Store) DeleteThread(threadID string) {
	s.mu.Lock()
	idx := -1
	for i, t := range s.threads {
		if t.ID == threadID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return
	}
	s.threads = append(s.threads[:idx], s.threads[idx+1:]...)
	if s.activeThread == threadID {
		s.activeThread = ""
	}
	if s.activePopover == threadID {
		s.activePopover = ""
	}
	s.mu.Unlock()

	s.dispatch("delete_thread", func(ctx context.Context) error {
		return s.remote.DeleteThread(ctx, threadID)
	})
}

// DeleteReply removes a reply by id from whichever thread holds it.
func (s *Store) DeleteReply(replyID string) {
	s.mu.Lock()
	found := false
	for _, t := range s.threads {
		for i, r := range t.Replies {
			if r.ID == replyID {
				t.Replies = append(t.Replies[:i], t.Replies[i+1:]...)
				t.UpdatedAt = s.now().UTC()
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.dispatch("delete_reply", func(ctx context.Context) error {
		return s.remote.DeleteReply(ctx, replyID)
	})
}

// UpdateThreadMessage replaces a thread's body in place.
func (s *Store) UpdateThreadMessage(threadID, text string) {
	if !ValidMessage(text) {
		return
	}
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	t := s.findLocked(threadID)
	if t == nil {
		s.mu.Unlock()
		return
	}
	t.Message = trimmed
	t.UpdatedAt = s.now().UTC()
	s.mu.Unlock()

	s.dispatch("update_thread_message", func(ctx context.Context) error {
		return s.remote.UpdateThreadMessage(ctx, threadID, trimmed)
	})
}

// UpdateReplyMessage replaces a reply's body in place.
func (s *Store) UpdateReplyMessage(replyID, text string) {
	if !ValidMessage(text) {
		return
	}
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	found := false
	for _, t := range s.threads {
		for i := range t.Replies {
			if t.Replies[i].ID == replyID {
				t.Replies[i].Message = trimmed
				t.Replies[i].UpdatedAt = s.now().UTC()
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.dispatch("update_reply_message", func(ctx context.Context) error {
		return s.remote.UpdateReplyMessage(ctx, replyID, trimmed)
	})
}

// Threads returns copies of the threads anchored to one scene.
func (s *Store) Threads(sceneID string) []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Thread
	for _, t := range s.threads {
		if t.SceneID == sceneID {
			out = append(out, cloneThread(t))
		}
	}
	return out
}

// AllThreads returns copies of every thread in the store.
func (s *Store) AllThreads() []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		out = append(out, cloneThread(t))
	}
	return out
}

// Thread returns a copy of one thread, nil when absent.
func (s *Store) Thread(threadID string) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.findLocked(threadID); t != nil {
		c := cloneThread(t)
		return &c
	}
	return nil
}

// ActiveThread returns the id of the most recently created or focused
// thread, "" when none.
func (s *Store) ActiveThread() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeThread
}

func (s *Store) findLocked(threadID string) *Thread {
	for _, t := range s.threads {
		if t.ID == threadID {
			return t
		}
	}
	return nil
}

// waitRemote blocks until every dispatched remote write has finished.
// Test hook only; production callers never wait on remote writes.
func (s *Store) waitRemote() {
	s.inflight.Wait()
}
