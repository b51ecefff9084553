// Package postgres implements the comments.Remote persistence collaborator
// over a Postgres database. It is used both by the client-side store (when
// a database URL is configured) and by the API service as its storage
// layer.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/scenecast/internal/comments"
	"github.com/scenecast/internal/identity"
)

// Repository stores threads and replies in two tables. Scene ids are
// stored exactly as written (namespace-qualified by the client store).
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open database handle. A nil handle yields a
// disabled repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Enabled reports whether a database is configured.
func (r *Repository) Enabled() bool {
	return r != nil && r.db != nil
}

// EnsureSchema creates the comment tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS scene_comment_threads (
		id TEXT PRIMARY KEY,
		scene_id TEXT NOT NULL,
		element_id TEXT NOT NULL DEFAULT '',
		target_label TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		author JSONB NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		position JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scene_comment_threads_scene
		ON scene_comment_threads (scene_id);

	CREATE TABLE IF NOT EXISTS scene_comment_replies (
		id TEXT PRIMARY KEY,
		thread_id TEXT NOT NULL REFERENCES scene_comment_threads (id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		author JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scene_comment_replies_thread
		ON scene_comment_replies (thread_id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create comment tables: %w", err)
	}
	return nil
}

// ListThreads returns all threads whose scene id starts with
// "{sceneFilter}/", or every thread when the filter is empty. Replies are
// loaded in creation order.
func (r *Repository) ListThreads(ctx context.Context, sceneFilter string) ([]comments.Thread, error) {
	query := `
	SELECT id, scene_id, element_id, target_label, message, author, status, position, created_at, updated_at
	FROM scene_comment_threads
	`
	args := []any{}
	if sceneFilter != "" {
		query += ` WHERE scene_id LIKE $1`
		args = append(args, sceneFilter+"/%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []comments.Thread
	for rows.Next() {
		var t comments.Thread
		var authorJSON []byte
		var positionJSON sql.NullString
		err := rows.Scan(
			&t.ID, &t.SceneID, &t.ElementID, &t.TargetLabel, &t.Message,
			&authorJSON, &t.Status, &positionJSON, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		if err := json.Unmarshal(authorJSON, &t.Author); err != nil {
			// Unreadable author metadata degrades to an anonymous row.
			t.Author = identity.Author{}
		}
		if positionJSON.Valid && positionJSON.String != "" {
			var pos comments.Position
			if err := json.Unmarshal([]byte(positionJSON.String), &pos); err == nil {
				t.Position = &pos
			}
		}
		t.Replies = []comments.Reply{}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threads: %w", err)
	}

	if len(threads) == 0 {
		return threads, nil
	}

	byID := make(map[string]*comments.Thread, len(threads))
	ids := make([]string, 0, len(threads))
	for i := range threads {
		byID[threads[i].ID] = &threads[i]
		ids = append(ids, threads[i].ID)
	}

	replies, err := r.listReplies(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		if t, ok := byID[reply.CommentID]; ok {
			t.Replies = append(t.Replies, reply)
		}
	}
	return threads, nil
}

func (r *Repository) listReplies(ctx context.Context, threadIDs []string) ([]comments.Reply, error) {
	const query = `
	SELECT id, thread_id, message, author, created_at, updated_at
	FROM scene_comment_replies
	WHERE thread_id = ANY($1)
	ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(threadIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	var replies []comments.Reply
	for rows.Next() {
		var rep comments.Reply
		var authorJSON []byte
		if err := rows.Scan(&rep.ID, &rep.CommentID, &rep.Message, &authorJSON, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		if err := json.Unmarshal(authorJSON, &rep.Author); err != nil {
			rep.Author = identity.Author{}
		}
		replies = append(replies, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating replies: %w", err)
	}
	return replies, nil
}

// InsertThread stores a new thread row.
func (r *Repository) InsertThread(ctx context.Context, t comments.Thread) error {
	authorJSON, err := json.Marshal(t.Author)
	if err != nil {
		return fmt.Errorf("failed to marshal author: %w", err)
	}
	var positionJSON any
	if t.Position != nil {
		raw, err := json.Marshal(t.Position)
		if err != nil {
			return fmt.Errorf("failed to marshal position: %w", err)
		}
		positionJSON = string(raw)
	}

	const query = `
	INSERT INTO scene_comment_threads
		(id, scene_id, element_id, target_label, message, author, status, position, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.SceneID, t.ElementID, t.TargetLabel, t.Message,
		authorJSON, string(t.Status), positionJSON, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

// InsertReply stores a new reply row.
func (r *Repository) InsertReply(ctx context.Context, rep comments.Reply) error {
	authorJSON, err := json.Marshal(rep.Author)
	if err != nil {
		return fmt.Errorf("failed to marshal author: %w", err)
	}

	const query = `
	INSERT INTO scene_comment_replies (id, thread_id, message, author, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		rep.ID, rep.CommentID, rep.Message, authorJSON, rep.CreatedAt, rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}
	return nil
}

// UpdateThreadStatus sets a thread's open/resolved state.
func (r *Repository) UpdateThreadStatus(ctx context.Context, id string, status comments.Status) error {
	return r.execOne(ctx, "thread", id,
		`UPDATE scene_comment_threads SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
}

// UpdateThreadMessage replaces a thread's body.
func (r *Repository) UpdateThreadMessage(ctx context.Context, id, text string) error {
	return r.execOne(ctx, "thread", id,
		`UPDATE scene_comment_threads SET message = $1, updated_at = $2 WHERE id = $3`,
		text, time.Now().UTC(), id,
	)
}

// UpdateReplyMessage replaces a reply's body.
func (r *Repository) UpdateReplyMessage(ctx context.Context, id, text string) error {
	return r.execOne(ctx, "reply", id,
		`UPDATE scene_comment_replies SET message = $1, updated_at = $2 WHERE id = $3`,
		text, time.Now().UTC(), id,
	)
}

// DeleteThread removes a thread; replies cascade.
func (r *Repository) DeleteThread(ctx context.Context, id string) error {
	return r.execOne(ctx, "thread", id,
		`DELETE FROM scene_comment_threads WHERE id = $1`, id,
	)
}

// DeleteReply removes one reply.
func (r *Repository) DeleteReply(ctx context.Context, id string) error {
	return r.execOne(ctx, "reply", id,
		`DELETE FROM scene_comment_replies WHERE id = $1`, id,
	)
}

func (r *Repository) execOne(ctx context.Context, kind, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}
