package httpapi

import (
	"net/http"

	"github.com/elee1766/naochat/src/config"
	"github.com/elee1766/naochat/src/storage"
	"github.com/gin-gonic/gin"
)

// ProjectResponse is the current project and the caller's role in it.
type ProjectResponse struct {
	Project *storage.Project `json:"project"`
	Role    storage.Role     `json:"role"`
}

// handleProject returns the current project
//
//	@Summary	Current project
//	@Tags		Project
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	ProjectResponse
//	@Router		/project [get]
func (s *Server) handleProject(c *gin.Context) {
	c.JSON(http.StatusOK, ProjectResponse{Project: currentProject(c), Role: currentRole(c)})
}

// ModelProviderResponse names the provider and model chats will use.
type ModelProviderResponse struct {
	Provider *storage.LLMProvider `json:"provider"`
	Model    string               `json:"model,omitempty"`
}

// handleModelProvider resolves the provider chats will use
//
//	@Summary	Active model provider
//	@Tags		Project
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	ModelProviderResponse
//	@Router		/project/model-provider [get]
func (s *Server) handleModelProvider(c *gin.Context) {
	provider, err := s.configs.ResolveActiveProvider(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, "failed to resolve model provider", err)
		return
	}
	resp := ModelProviderResponse{}
	if provider != "" {
		resp.Provider = &provider
		resp.Model = s.agent.ModelFor(string(provider))
	}
	c.JSON(http.StatusOK, resp)
}

// handleListLLMConfigs lists the project's provider keys, redacted
//
//	@Summary	List LLM configs
//	@Tags		Project
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	projectconfig.LLMConfigs
//	@Router		/project/llm-configs [get]
func (s *Server) handleListLLMConfigs(c *gin.Context) {
	configs, err := s.configs.Get(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, "failed to load llm configs", err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

// handleGetLLMConfig returns one provider key, redacted, or null
//
//	@Summary	Get LLM config
//	@Tags		Project
//	@Produce	json
//	@Security	BearerAuth
//	@Param		provider	path		string	true	"anthropic or openai"
//	@Success	200			{object}	projectconfig.LLMConfigView
//	@Failure	400			{object}	ErrorResponse
//	@Router		/project/llm-configs/{provider} [get]
func (s *Server) handleGetLLMConfig(c *gin.Context) {
	view, err := s.configs.GetByProvider(c.Request.Context(), currentProject(c).ID, storage.LLMProvider(c.Param("provider")))
	if err != nil {
		fail(c, "failed to load llm config", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// LLMConfigRequest sets a provider key.
type LLMConfigRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// handleUpsertLLMConfig stores a provider key
//
//	@Summary	Set LLM config
//	@Tags		Project
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		provider	path		string				true	"anthropic or openai"
//	@Param		request		body		LLMConfigRequest	true	"Key"
//	@Success	200			{object}	projectconfig.LLMConfigView
//	@Failure	400			{object}	ErrorResponse
//	@Failure	403			{object}	ErrorResponse
//	@Router		/project/llm-configs/{provider} [put]
func (s *Server) handleUpsertLLMConfig(c *gin.Context) {
	var req LLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := s.configs.Upsert(c.Request.Context(), currentProject(c).ID, storage.LLMProvider(c.Param("provider")), req.APIKey)
	if err != nil {
		fail(c, "failed to save llm config", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleDeleteLLMConfig removes a provider key
//
//	@Summary	Delete LLM config
//	@Tags		Project
//	@Security	BearerAuth
//	@Param		provider	path	string	true	"anthropic or openai"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/project/llm-configs/{provider} [delete]
func (s *Server) handleDeleteLLMConfig(c *gin.Context) {
	if err := s.configs.Delete(c.Request.Context(), currentProject(c).ID, storage.LLMProvider(c.Param("provider"))); err != nil {
		fail(c, "failed to delete llm config", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleGetSlack returns the project's Slack integration state
//
//	@Summary	Get Slack config
//	@Tags		Project
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	projectconfig.SlackConfigView
//	@Router		/project/slack-config [get]
func (s *Server) handleGetSlack(c *gin.Context) {
	view, err := s.configs.GetSlack(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, "failed to load slack config", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SlackConfigRequest sets Slack credentials.
type SlackConfigRequest struct {
	BotToken      string `json:"bot_token" binding:"required"`
	SigningSecret string `json:"signing_secret" binding:"required"`
}

// handleUpsertSlack stores Slack credentials
//
//	@Summary	Set Slack config
//	@Tags		Project
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		SlackConfigRequest	true	"Credentials"
//	@Success	200		{object}	projectconfig.SlackPreview
//	@Failure	403		{object}	ErrorResponse
//	@Router		/project/slack-config [put]
func (s *Server) handleUpsertSlack(c *gin.Context) {
	var req SlackConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	preview, err := s.configs.UpsertSlack(c.Request.Context(), currentProject(c).ID, req.BotToken, req.SigningSecret)
	if err != nil {
		fail(c, "failed to save slack config", err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// handleDeleteSlack removes Slack credentials
//
//	@Summary	Delete Slack config
//	@Tags		Project
//	@Security	BearerAuth
//	@Success	204
//	@Failure	403	{object}	ErrorResponse
//	@Router		/project/slack-config [delete]
func (s *Server) handleDeleteSlack(c *gin.Context) {
	if err := s.configs.DeleteSlack(c.Request.Context(), currentProject(c).ID); err != nil {
		fail(c, "failed to delete slack config", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleGetSettings returns the caller's preferences
//
//	@Summary	Get settings
//	@Tags		Settings
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	config.Preferences
//	@Router		/settings [get]
func (s *Server) handleGetSettings(c *gin.Context) {
	stored, err := storage.GetUserSettings(c.Request.Context(), s.db, currentUser(c).ID)
	if err != nil {
		fail(c, "failed to load settings", err)
		return
	}
	prefs := config.DefaultPreferences()
	if stored != nil {
		if prefs, err = config.ParsePreferences(stored.Preferences); err != nil {
			// A bad stored document falls back to the defaults.
			s.logger.Warn("stored preferences are invalid", "user_id", currentUser(c).ID, "error", err)
		}
	}
	c.JSON(http.StatusOK, prefs)
}

// handlePutSettings replaces the caller's preferences
//
//	@Summary	Save settings
//	@Tags		Settings
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		config.Preferences	true	"Preferences"
//	@Success	200		{object}	config.Preferences
//	@Failure	400		{object}	ErrorResponse
//	@Router		/settings [put]
func (s *Server) handlePutSettings(c *gin.Context) {
	prefs := config.DefaultPreferences()
	if err := c.ShouldBindJSON(&prefs); err != nil {
		badRequest(c, err)
		return
	}
	if err := prefs.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := prefs.Encode()
	if err != nil {
		fail(c, "failed to encode settings", err)
		return
	}
	if err := storage.SaveUserSettings(c.Request.Context(), s.db, &storage.UserSettings{UserID: currentUser(c).ID, Preferences: doc}); err != nil {
		fail(c, "failed to save settings", err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
