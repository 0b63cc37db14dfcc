package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

const chatColumns = `id, project_id, user_id, title, created_at, updated_at`

// GetChatByID retrieves a chat by its ID
func GetChatByID(ctx context.Context, db sqlscan.Querier, chatID string) (*Chat, error) {
	var c Chat
	err := sqlscan.Get(ctx, db, &c, `SELECT `+chatColumns+` FROM chats WHERE id = ?`, chatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListChatsByUser returns a user's chats in a project, most recently updated first
func ListChatsByUser(ctx context.Context, db sqlscan.Querier, projectID, userID string) ([]Chat, error) {
	var chats []Chat
	query := `SELECT ` + chatColumns + ` FROM chats WHERE project_id = ? AND user_id = ? ORDER BY updated_at DESC`
	if err := sqlscan.Select(ctx, db, &chats, query, projectID, userID); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat creates a new chat in the database
func CreateChat(ctx context.Context, db Execer, chat *Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	now := time.Now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	if chat.UpdatedAt.IsZero() {
		chat.UpdatedAt = now
	}

	query := `INSERT INTO chats (` + chatColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, chat.ID, chat.ProjectID, chat.UserID, chat.Title, chat.CreatedAt, chat.UpdatedAt)
	return err
}

// RenameChat sets the chat title
func RenameChat(ctx context.Context, db Execer, chatID, title string) error {
	_, err := db.ExecContext(ctx, `UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`, title, time.Now(), chatID)
	return err
}

// TouchChat bumps updated_at so the chat sorts first
func TouchChat(ctx context.Context, db Execer, chatID string) error {
	_, err := db.ExecContext(ctx, `UPDATE chats SET updated_at = ? WHERE id = ?`, time.Now(), chatID)
	return err
}

// DeleteChat removes a chat and, through the foreign keys, its messages
func DeleteChat(ctx context.Context, db Execer, chatID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID)
	return err
}

// GetChatMessages retrieves all messages for a chat in creation order
func GetChatMessages(ctx context.Context, db sqlscan.Querier, chatID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	query := `SELECT id, chat_id, role, parts, created_at FROM chat_messages WHERE chat_id = ? ORDER BY created_at, rowid`
	if err := sqlscan.Select(ctx, db, &messages, query, chatID); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetChatMessage retrieves one message
func GetChatMessage(ctx context.Context, db sqlscan.Querier, messageID string) (*ChatMessage, error) {
	var m ChatMessage
	err := sqlscan.Get(ctx, db, &m, `SELECT id, chat_id, role, parts, created_at FROM chat_messages WHERE id = ?`, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// SaveChatMessage inserts a message, or replaces the parts of an existing one.
// Streaming responses are saved repeatedly under the same id.
func SaveChatMessage(ctx context.Context, db Execer, message *ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if message.Parts == nil {
		message.Parts = JSONParts{}
	}

	query := `INSERT INTO chat_messages (id, chat_id, role, parts, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET parts = excluded.parts`
	_, err := db.ExecContext(ctx, query, message.ID, message.ChatID, message.Role, message.Parts, message.CreatedAt)
	return err
}
