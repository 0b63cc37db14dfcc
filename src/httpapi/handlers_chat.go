package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/charts"
	"github.com/elee1766/naochat/src/chatview"
	"github.com/elee1766/naochat/src/projectconfig"
	"github.com/elee1766/naochat/src/runner"
	"github.com/elee1766/naochat/src/storage"
	"github.com/gin-gonic/gin"
)

// HeaderChatID carries the id of the chat a streamed answer belongs to.
const HeaderChatID = "X-Chat-Id"

// ChatRequest sends a message. Without chat_id a new chat is started.
type ChatRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message" binding:"required"`
}

// handleChat streams the agent's answer as server-sent events
//
//	@Summary		Send a message
//	@Description	Streams UI message chunks as server-sent events, one JSON chunk per data line, ending with "data: [DONE]".
//	@Tags			Chat
//	@Accept			json
//	@Produce		text/event-stream
//	@Security		BearerAuth
//	@Param			request	body		ChatRequest	true	"Message"
//	@Success		200		{object}	aisdk.UIChunk
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/chat [post]
func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		fail(c, "empty message", runner.ErrEmptyMessage)
		return
	}

	ctx := c.Request.Context()
	project := currentProject(c)
	provider, err := s.configs.ResolveActiveProvider(ctx, project.ID)
	if err != nil {
		fail(c, "failed to resolve model provider", err)
		return
	}
	if provider == "" {
		fail(c, "no model provider is configured", projectconfig.ErrNoProvider)
		return
	}

	chat, err := s.chats.OpenChat(ctx, project.ID, currentUser(c).ID, req.ChatID, req.Message)
	if err != nil {
		fail(c, "failed to open chat", err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header(HeaderChatID, chat.ID)
	c.Status(http.StatusOK)

	sent := 0
	sink := runner.SinkFunc(func(chunk aisdk.UIChunk) error {
		b, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := c.Writer.WriteString("data: " + string(b) + "\n\n"); err != nil {
			return err
		}
		c.Writer.Flush()
		sent++
		return nil
	})

	message := aisdk.UIMessage{Role: aisdk.RoleUser, Parts: []aisdk.Part{aisdk.NewTextPart(req.Message)}}
	if _, err := s.chats.Send(ctx, chat, message, sink); err != nil {
		s.logger.Error("chat failed", "chat_id", chat.ID, "error", err)
		// Failures before the run started have not been reported yet.
		if sent == 0 {
			_ = sink.Send(aisdk.UIChunk{Type: aisdk.ChunkError, ErrorText: err.Error()})
		}
	}
	_, _ = c.Writer.WriteString("data: [DONE]\n\n")
	c.Writer.Flush()
}

// ChatSummary is a chat in the sidebar listing.
type ChatSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TimeAgo   string    `json:"time_ago"`
}

// handleListChats lists the caller's chats, most recent first
//
//	@Summary	List chats
//	@Tags		Chats
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	ChatSummary
//	@Router		/chats [get]
func (s *Server) handleListChats(c *gin.Context) {
	chats, err := storage.ListChatsByUser(c.Request.Context(), s.db, currentProject(c).ID, currentUser(c).ID)
	if err != nil {
		fail(c, "failed to list chats", err)
		return
	}
	now := time.Now()
	out := make([]ChatSummary, 0, len(chats))
	for _, ch := range chats {
		out = append(out, ChatSummary{
			ID:        ch.ID,
			Title:     ch.Title,
			CreatedAt: ch.CreatedAt,
			UpdatedAt: ch.UpdatedAt,
			TimeAgo:   chatview.FormatTimeAgo(now, ch.UpdatedAt),
		})
	}
	c.JSON(http.StatusOK, out)
}

// ChatResponse is a chat with its messages, raw and grouped for display.
type ChatResponse struct {
	Chat     *storage.Chat        `json:"chat"`
	Messages []aisdk.UIMessage    `json:"messages"`
	Groups   []chatview.GroupView `json:"groups"`
}

// loadChat returns the chat named by the :id parameter when the caller owns
// it. It writes the error response otherwise.
func (s *Server) loadChat(c *gin.Context) (*storage.Chat, bool) {
	id := c.Param("id")
	chat, err := storage.GetChatByID(c.Request.Context(), s.db, id)
	if err != nil {
		fail(c, "failed to load chat", err)
		return nil, false
	}
	if chat == nil || chat.UserID != currentUser(c).ID || chat.ProjectID != currentProject(c).ID {
		fail(c, "chat not found", runner.ErrChatNotFound)
		return nil, false
	}
	return chat, true
}

// handleGetChat returns a chat with its messages
//
//	@Summary	Get chat
//	@Tags		Chats
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Chat id"
//	@Success	200	{object}	ChatResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/chats/{id} [get]
func (s *Server) handleGetChat(c *gin.Context) {
	chat, ok := s.loadChat(c)
	if !ok {
		return
	}
	messages, err := s.chats.History(c.Request.Context(), chat.ID)
	if err != nil {
		fail(c, "failed to load messages", err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Chat: chat, Messages: messages, Groups: chatview.BuildView(messages)})
}

// RenameRequest sets a chat title.
type RenameRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// handleRenameChat renames a chat
//
//	@Summary	Rename chat
//	@Tags		Chats
//	@Accept		json
//	@Security	BearerAuth
//	@Param		id		path	string			true	"Chat id"
//	@Param		request	body	RenameRequest	true	"Title"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/chats/{id} [patch]
func (s *Server) handleRenameChat(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	chat, ok := s.loadChat(c)
	if !ok {
		return
	}
	if err := storage.RenameChat(c.Request.Context(), s.db, chat.ID, strings.TrimSpace(req.Title)); err != nil {
		fail(c, "failed to rename chat", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleDeleteChat deletes a chat and its messages
//
//	@Summary	Delete chat
//	@Tags		Chats
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Chat id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/chats/{id} [delete]
func (s *Server) handleDeleteChat(c *gin.Context) {
	chat, ok := s.loadChat(c)
	if !ok {
		return
	}
	if err := storage.DeleteChat(c.Request.Context(), s.db, chat.ID); err != nil {
		fail(c, "failed to delete chat", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleChart binds a display_chart call to its query result and shapes it
// for drawing
//
//	@Summary	Chart data
//	@Tags		Chats
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id			path		string	true	"Chat id"
//	@Param		toolCallId	path		string	true	"display_chart tool call id"
//	@Param		range		query		string	false	"Date range preset (7d, 30d, 3m, 6m, 1y, all)"
//	@Param		hidden		query		string	false	"Comma separated series keys to hide"
//	@Success	200			{object}	charts.ChartModel
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/chats/{id}/charts/{toolCallId} [get]
func (s *Server) handleChart(c *gin.Context) {
	r, err := charts.ParseDateRange(c.Query("range"))
	if err != nil {
		badRequest(c, err)
		return
	}
	chat, ok := s.loadChat(c)
	if !ok {
		return
	}
	messages, err := s.chats.History(c.Request.Context(), chat.ID)
	if err != nil {
		fail(c, "failed to load messages", err)
		return
	}

	binding, found := charts.BindAll(messages)[c.Param("toolCallId")]
	if !found {
		abortError(c, http.StatusNotFound, "chart not found", nil)
		return
	}

	var hidden []string
	if h := c.Query("hidden"); h != "" {
		hidden = strings.Split(h, ",")
	}
	c.JSON(http.StatusOK, charts.Render(binding, r, charts.NewSeriesVisibility(hidden...)))
}

// FeedbackRequest votes on an assistant message.
type FeedbackRequest struct {
	Vote        storage.Vote `json:"vote" binding:"required,oneof=up down"`
	Explanation string       `json:"explanation" binding:"max=2000"`
}

// handleFeedback records a vote on an assistant message
//
//	@Summary	Message feedback
//	@Tags		Chats
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Message id"
//	@Param		request	body		FeedbackRequest	true	"Vote"
//	@Success	200		{object}	storage.MessageFeedback
//	@Failure	404		{object}	ErrorResponse
//	@Router		/messages/{id}/feedback [post]
func (s *Server) handleFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	user := currentUser(c)

	msg, err := storage.GetChatMessage(ctx, s.db, c.Param("id"))
	if err != nil {
		fail(c, "failed to load message", err)
		return
	}
	var chat *storage.Chat
	if msg != nil {
		if chat, err = storage.GetChatByID(ctx, s.db, msg.ChatID); err != nil {
			fail(c, "failed to load chat", err)
			return
		}
	}
	if msg == nil || chat == nil || chat.UserID != user.ID || msg.Role != string(aisdk.RoleAssistant) {
		abortError(c, http.StatusNotFound, "message not found", nil)
		return
	}

	feedback := &storage.MessageFeedback{
		MessageID:   msg.ID,
		ChatID:      chat.ID,
		UserID:      user.ID,
		Vote:        req.Vote,
		Explanation: strings.TrimSpace(req.Explanation),
	}
	if err := storage.SaveMessageFeedback(ctx, s.db, feedback); err != nil {
		fail(c, "failed to save feedback", err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}
