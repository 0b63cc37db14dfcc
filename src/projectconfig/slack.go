package projectconfig

import (
	"context"
	"fmt"

	"github.com/elee1766/naochat/src/storage"
)

// SlackPreview is stored Slack credentials as shown to clients.
type SlackPreview struct {
	BotTokenPreview      string `json:"botTokenPreview"`
	SigningSecretPreview string `json:"signingSecretPreview"`
}

func newSlackPreview(c *storage.SlackConfig) *SlackPreview {
	return &SlackPreview{
		BotTokenPreview:      Preview(c.BotToken, 4, 4),
		SigningSecretPreview: Preview(c.SigningSecret, 4, 4),
	}
}

// SlackConfigView is the Slack integration state of a project.
type SlackConfigView struct {
	ProjectConfig *SlackPreview `json:"projectConfig"`
	HasEnvConfig  bool          `json:"hasEnvConfig"`
	RedirectURL   string        `json:"redirectUrl"`
	ProjectID     string        `json:"projectId"`
}

// GetSlack returns the project's redacted Slack credentials and whether the
// environment provides a fallback.
func (s *Service) GetSlack(ctx context.Context, projectID string) (*SlackConfigView, error) {
	c, err := storage.GetSlackConfig(ctx, s.db, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slack config: %w", err)
	}
	view := &SlackConfigView{
		HasEnvConfig: s.HasEnvSlack(),
		RedirectURL:  s.env(EnvRedirectURL),
		ProjectID:    projectID,
	}
	if c != nil {
		view.ProjectConfig = newSlackPreview(c)
	}
	return view, nil
}

// UpsertSlack stores the project's Slack credentials.
func (s *Service) UpsertSlack(ctx context.Context, projectID, botToken, signingSecret string) (*SlackPreview, error) {
	if botToken == "" || signingSecret == "" {
		return nil, ErrEmptySecret
	}
	c, err := storage.UpsertSlackConfig(ctx, s.db, &storage.SlackConfig{
		ProjectID:     projectID,
		BotToken:      botToken,
		SigningSecret: signingSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save slack config: %w", err)
	}
	s.logger.Info("slack config saved", "project_id", projectID)
	return newSlackPreview(c), nil
}

// DeleteSlack removes the project's Slack credentials.
func (s *Service) DeleteSlack(ctx context.Context, projectID string) error {
	if err := storage.DeleteSlackConfig(ctx, s.db, projectID); err != nil {
		return fmt.Errorf("failed to delete slack config: %w", err)
	}
	s.logger.Info("slack config deleted", "project_id", projectID)
	return nil
}

// HasEnvSlack reports whether both Slack environment variables are set.
func (s *Service) HasEnvSlack() bool {
	return s.env(EnvSlackBotToken) != "" && s.env(EnvSlackSigningSecret) != ""
}
