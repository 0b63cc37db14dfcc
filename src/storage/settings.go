package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetUserSettings returns the stored preferences of a user
func GetUserSettings(ctx context.Context, db sqlscan.Querier, userID string) (*UserSettings, error) {
	var s UserSettings
	err := sqlscan.Get(ctx, db, &s, `SELECT user_id, preferences, updated_at FROM user_settings WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// SaveUserSettings replaces the stored preferences of a user
func SaveUserSettings(ctx context.Context, db Execer, settings *UserSettings) error {
	settings.UpdatedAt = time.Now()
	if settings.Preferences == "" {
		settings.Preferences = "{}"
	}
	query := `INSERT INTO user_settings (user_id, preferences, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET preferences = excluded.preferences, updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, settings.UserID, settings.Preferences, settings.UpdatedAt)
	return err
}

// GetMessageFeedback returns the feedback left on a message
func GetMessageFeedback(ctx context.Context, db sqlscan.Querier, messageID string) (*MessageFeedback, error) {
	var f MessageFeedback
	query := `SELECT message_id, chat_id, user_id, vote, explanation, created_at, updated_at FROM message_feedback WHERE message_id = ?`
	err := sqlscan.Get(ctx, db, &f, query, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// SaveMessageFeedback records a vote on a message, replacing any earlier vote
func SaveMessageFeedback(ctx context.Context, db Execer, feedback *MessageFeedback) error {
	now := time.Now()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = now
	}
	feedback.UpdatedAt = now

	query := `INSERT INTO message_feedback (message_id, chat_id, user_id, vote, explanation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (message_id) DO UPDATE SET
			vote = excluded.vote,
			explanation = excluded.explanation,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query,
		feedback.MessageID,
		feedback.ChatID,
		feedback.UserID,
		feedback.Vote,
		feedback.Explanation,
		feedback.CreatedAt,
		feedback.UpdatedAt,
	)
	return err
}
