package comments

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Remote is the optional persistence collaborator behind the store. All
// store mutations apply locally first and then dispatch to the Remote
// fire-and-forget: failures are logged with an operation code and
// swallowed, local state is never rolled back, and nothing cancels an
// in-flight write. This is deliberate at-most-once delivery — a failed
// write means the remote copy is stale until the next full Load.
type Remote interface {
	// Enabled gates every other call; it is a runtime capability flag
	// (credentials present), not a build-time branch.
	Enabled() bool

	ListThreads(ctx context.Context, sceneFilter string) ([]Thread, error)
	InsertThread(ctx context.Context, t Thread) error
	InsertReply(ctx context.Context, r Reply) error
	UpdateThreadStatus(ctx context.Context, id string, status Status) error
	UpdateThreadMessage(ctx context.Context, id, text string) error
	UpdateReplyMessage(ctx context.Context, id, text string) error
	DeleteThread(ctx context.Context, id string) error
	DeleteReply(ctx context.Context, id string) error
}

// remoteEnabled treats both a nil Remote and a Remote without credentials
// as "in-memory only".
func (s *Store) remoteEnabled() bool {
	return s.remote != nil && s.remote.Enabled()
}

// dispatch runs one remote write asynchronously, bounded by the shared
// rate limiter. Two rapid edits to the same record produce two
// independent in-flight writes with no ordering guarantee between them;
// the local state already reflects the latest edit either way.
func (s *Store) dispatch(op string, fn func(ctx context.Context) error) {
	if !s.remoteEnabled() {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx := context.Background()
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
		}
		if err := fn(ctx); err != nil {
			log.Warn().Str("op", op).Err(err).Msg("remote comment write failed, keeping local state")
		}
	}()
}

// defaultWriteLimiter allows short bursts of rapid edits without letting
// a drag-resize storm flood the remote.
func defaultWriteLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(20), 40)
}
