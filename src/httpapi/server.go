// Package httpapi serves the chat application's JSON API over gin.
//
//	@title			naochat API
//	@version		1.0
//	@description	Chat with an analytics agent over your warehouses and project files.
//	@BasePath		/api
//	@securityDefinitions.apikey	BearerAuth
//	@in				header
//	@name			Authorization
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/elee1766/naochat/docs"
	"github.com/elee1766/naochat/src/auth"
	"github.com/elee1766/naochat/src/config"
	"github.com/elee1766/naochat/src/projectconfig"
	"github.com/elee1766/naochat/src/runner"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the services the API is built on.
type Deps struct {
	DB      *sql.DB
	Auth    *auth.Service
	Configs *projectconfig.Service
	Chats   *runner.Service
	// Agent is reported by the model provider endpoint.
	Agent  config.AgentConfig
	Server config.ServerConfig
	Logger *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	db      *sql.DB
	auth    *auth.Service
	configs *projectconfig.Service
	chats   *runner.Service
	agent   config.AgentConfig
	cfg     config.ServerConfig
	logger  *slog.Logger
	engine  *gin.Engine
}

// New builds the server and its routes.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		db:      deps.DB,
		auth:    deps.Auth,
		configs: deps.Configs,
		chats:   deps.Chats,
		agent:   deps.Agent,
		cfg:     deps.Server,
		logger:  deps.Logger.With("component", "http"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	if len(s.cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AddAllowHeaders("Authorization")
		corsCfg.AddExposeHeaders(HeaderChatID)
		r.Use(cors.New(corsCfg))
	}
	if s.cfg.RateLimitPerMinute > 0 {
		r.Use(rateLimit(s.cfg.RateLimitPerMinute, time.Minute))
	}
	if s.cfg.EnableDocs {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.handleSignUp)
	authGroup.POST("/signin", s.handleSignIn)
	authGroup.GET("/me", s.requireUser(), s.handleMe)
	authGroup.PATCH("/me", s.requireUser(), s.handleUpdateMe)

	member := api.Group("", s.requireUser(), s.requireMember())
	member.POST("/chat", s.handleChat)

	member.GET("/chats", s.handleListChats)
	member.GET("/chats/:id", s.handleGetChat)
	member.PATCH("/chats/:id", s.handleRenameChat)
	member.DELETE("/chats/:id", s.handleDeleteChat)
	member.GET("/chats/:id/charts/:toolCallId", s.handleChart)
	member.POST("/messages/:id/feedback", s.handleFeedback)

	member.GET("/project", s.handleProject)
	member.GET("/project/model-provider", s.handleModelProvider)
	member.GET("/project/llm-configs", s.handleListLLMConfigs)
	member.GET("/project/llm-configs/:provider", s.handleGetLLMConfig)
	member.GET("/project/slack-config", s.handleGetSlack)

	admin := member.Group("", requireAdmin())
	admin.PUT("/project/llm-configs/:provider", s.handleUpsertLLMConfig)
	admin.DELETE("/project/llm-configs/:provider", s.handleDeleteLLMConfig)
	admin.PUT("/project/slack-config", s.handleUpsertSlack)
	admin.DELETE("/project/slack-config", s.handleDeleteSlack)
	admin.POST("/project/users", s.handleCreateUser)

	api.GET("/settings", s.requireUser(), s.handleGetSettings)
	api.PUT("/settings", s.requireUser(), s.handlePutSettings)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
