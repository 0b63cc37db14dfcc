package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

const llmConfigColumns = `id, project_id, provider, api_key, created_at, updated_at`

// GetLLMConfigs returns every provider key stored for a project
func GetLLMConfigs(ctx context.Context, db sqlscan.Querier, projectID string) ([]LLMConfig, error) {
	var configs []LLMConfig
	query := `SELECT ` + llmConfigColumns + ` FROM project_llm_configs WHERE project_id = ? ORDER BY created_at, rowid`
	if err := sqlscan.Select(ctx, db, &configs, query, projectID); err != nil {
		return nil, err
	}
	return configs, nil
}

// GetLLMConfigByProvider returns the project's key for one provider
func GetLLMConfigByProvider(ctx context.Context, db sqlscan.Querier, projectID string, provider LLMProvider) (*LLMConfig, error) {
	var c LLMConfig
	query := `SELECT ` + llmConfigColumns + ` FROM project_llm_configs WHERE project_id = ? AND provider = ?`
	err := sqlscan.Get(ctx, db, &c, query, projectID, provider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// UpsertLLMConfig stores a provider key. An existing (project, provider) row
// keeps its id and created_at and only has api_key and updated_at replaced.
func UpsertLLMConfig(ctx context.Context, db ExecQuerier, config *LLMConfig) (*LLMConfig, error) {
	id := config.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()

	query := `INSERT INTO project_llm_configs (` + llmConfigColumns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, provider) DO UPDATE SET api_key = excluded.api_key, updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, id, config.ProjectID, config.Provider, config.APIKey, now, now); err != nil {
		return nil, err
	}
	return GetLLMConfigByProvider(ctx, db, config.ProjectID, config.Provider)
}

// DeleteLLMConfig removes a provider key. Deleting a missing key is not an error.
func DeleteLLMConfig(ctx context.Context, db Execer, projectID string, provider LLMProvider) error {
	_, err := db.ExecContext(ctx, `DELETE FROM project_llm_configs WHERE project_id = ? AND provider = ?`, projectID, provider)
	return err
}

const slackConfigColumns = `id, project_id, bot_token, signing_secret, created_at, updated_at`

// GetSlackConfig returns the project's Slack credentials
func GetSlackConfig(ctx context.Context, db sqlscan.Querier, projectID string) (*SlackConfig, error) {
	var c SlackConfig
	err := sqlscan.Get(ctx, db, &c, `SELECT `+slackConfigColumns+` FROM project_slack_configs WHERE project_id = ?`, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// UpsertSlackConfig stores the project's Slack credentials, replacing both
// secrets of an existing row.
func UpsertSlackConfig(ctx context.Context, db ExecQuerier, config *SlackConfig) (*SlackConfig, error) {
	id := config.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()

	query := `INSERT INTO project_slack_configs (` + slackConfigColumns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id) DO UPDATE SET
			bot_token = excluded.bot_token,
			signing_secret = excluded.signing_secret,
			updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, id, config.ProjectID, config.BotToken, config.SigningSecret, now, now); err != nil {
		return nil, err
	}
	return GetSlackConfig(ctx, db, config.ProjectID)
}

// DeleteSlackConfig removes the project's Slack credentials
func DeleteSlackConfig(ctx context.Context, db Execer, projectID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM project_slack_configs WHERE project_id = ?`, projectID)
	return err
}
