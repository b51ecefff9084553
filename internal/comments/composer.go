package comments

import "github.com/scenecast/internal/identity"

// Composer lifecycle: Idle -> Composing -> (Submitted | Cancelled) -> Idle.
// Entry requires comment mode; at most one composer exists at a time. The
// anchor position is captured once at entry and never recomputed — only
// the rendered card placement moves (geometry.PlaceCard).

// SetCommentMode flips the global comment-mode flag. Turning it off
// cancels any in-flight composer.
func (s *Store) SetCommentMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentMode = on
	if !on {
		s.composer = nil
	}
}

// CommentMode reports whether comment placement is active.
func (s *Store) CommentMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commentMode
}

// BeginComposer starts drafting a comment at the captured position.
// Returns false when comment mode is off. Starting a second composer
// replaces the first (the pending draft is discarded).
func (s *Store) BeginComposer(sceneID, elementID, targetLabel string, pos *Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.commentMode {
		return false
	}
	s.composer = &Composer{
		SceneID:     sceneID,
		ElementID:   elementID,
		TargetLabel: targetLabel,
		Position:    pos,
	}
	return true
}

// ActiveComposer returns a copy of the pending composer, nil when idle.
func (s *Store) ActiveComposer() *Composer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.composer == nil {
		return nil
	}
	c := *s.composer
	return &c
}

// CancelComposer discards the pending draft. No thread is created and no
// residue blocks a later composer or CreateThread call.
func (s *Store) CancelComposer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer = nil
}

// SubmitComposer validates the drafted message, creates the thread, opens
// its popover, and clears the composer. Returns nil without clearing the
// draft when validation fails, so the user can keep typing.
func (s *Store) SubmitComposer(message string, author identity.Author) *Thread {
	if !ValidMessage(message) {
		return nil
	}

	s.mu.Lock()
	c := s.composer
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	t := s.CreateThread(CreateThreadInput{
		SceneID:     c.SceneID,
		ElementID:   c.ElementID,
		TargetLabel: c.TargetLabel,
		Message:     message,
		Position:    c.Position,
		Author:      author,
	})
	if t == nil {
		return nil
	}

	s.mu.Lock()
	s.composer = nil
	s.activePopover = t.ID
	s.mu.Unlock()
	return t
}

// OpenPopover shows the reply popover for one thread, implicitly hiding
// any other. Opening a popover for an absent thread is a no-op.
func (s *Store) OpenPopover(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(threadID) == nil {
		return
	}
	s.activePopover = threadID
	s.activeThread = threadID
}

// ClosePopover hides whichever popover is showing.
func (s *Store) ClosePopover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePopover = ""
}

// ActivePopover returns the id of the single visible popover's thread,
// "" when none.
func (s *Store) ActivePopover() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePopover
}
