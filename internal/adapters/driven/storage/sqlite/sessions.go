package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// sessionRepository implements driven.SessionRepository.
type sessionRepository struct {
	store *Store
}

var _ driven.SessionRepository = (*sessionRepository)(nil)

// LoadAll returns every session in creation order with its messages.
func (r *sessionRepository) LoadAll(ctx context.Context) ([]domain.ChatSession, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT name FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}

	var sessions []domain.ChatSession //nolint:prealloc // size unknown from query
	index := make(map[string]int)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		index[name] = len(sessions)
		sessions = append(sessions, domain.ChatSession{Name: name, Messages: []domain.Message{}})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	rows.Close()

	msgRows, err := r.store.db.QueryContext(ctx, `
		SELECT id, session_name, question, answer, model, created_at
		FROM messages
		ORDER BY session_name, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var msg domain.Message
		var session, createdAt string
		if err := msgRows.Scan(&msg.ID, &session, &msg.Question, &msg.Answer, &msg.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.CreatedAt = parseTime(createdAt)

		i, ok := index[session]
		if !ok {
			continue
		}
		sessions[i].Messages = append(sessions[i].Messages, msg)
	}
	if err := msgRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return sessions, nil
}

// SaveSession creates the session if it does not exist.
func (r *sessionRepository) SaveSession(ctx context.Context, name string) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO sessions (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// DeleteSession removes the session. Its messages go with it by cascade.
func (r *sessionRepository) DeleteSession(ctx context.Context, name string) error {
	_, err := r.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SaveMessage inserts or updates a message at position.
func (r *sessionRepository) SaveMessage(ctx context.Context, session string, position int, msg domain.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("%w: message id is required", domain.ErrInvalidInput)
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_name, position, question, answer, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position = excluded.position,
			question = excluded.question,
			answer = excluded.answer,
			model = excluded.model
	`, msg.ID, session, position, msg.Question, msg.Answer, msg.Model, formatTime(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	return nil
}

// DeleteMessage removes a message and closes the gap in positions.
// Missing messages are a no-op.
func (r *sessionRepository) DeleteMessage(ctx context.Context, session, messageID string) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var position int
	err = tx.QueryRowContext(ctx,
		"SELECT position FROM messages WHERE id = ? AND session_name = ?",
		messageID, session,
	).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("finding message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", messageID); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE messages SET position = position - 1 WHERE session_name = ? AND position > ?",
		session, position,
	); err != nil {
		return fmt.Errorf("renumbering messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing message delete: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (r *sessionRepository) Close() error {
	return r.store.Close()
}
