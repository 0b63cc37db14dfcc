package httpapi

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"
)

// SignUpRequest registers an account.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignInRequest signs an account in.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleSignUp registers an account
//
//	@Summary	Sign up
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SignUpRequest	true	"Account"
//	@Success	201		{object}	auth.Session
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/auth/signup [post]
func (s *Server) handleSignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := s.auth.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, "sign up failed", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// handleSignIn issues a session token
//
//	@Summary	Sign in
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SignInRequest	true	"Credentials"
//	@Success	200		{object}	auth.Session
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/signin [post]
func (s *Server) handleSignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := s.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, "sign in failed", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleMe returns the signed-in user
//
//	@Summary	Current user
//	@Tags		Auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	storage.User
//	@Failure	401	{object}	ErrorResponse
//	@Router		/auth/me [get]
func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// UpdateMeRequest changes the signed-in user's profile.
type UpdateMeRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// handleUpdateMe renames the signed-in user
//
//	@Summary	Update profile
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		UpdateMeRequest	true	"Profile"
//	@Success	200		{object}	storage.User
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/me [patch]
func (s *Server) handleUpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := s.auth.Rename(c.Request.Context(), currentUser(c).ID, req.Name)
	if err != nil {
		fail(c, "failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUserRequest registers an account on someone's behalf.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// handleCreateUser creates an account with a generated password
//
//	@Summary	Create user
//	@Tags		Project
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CreateUserRequest	true	"Account"
//	@Success	201		{object}	auth.CreatedUser
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/project/users [post]
func (s *Server) handleCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := s.auth.CreateUser(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		fail(c, "failed to create user", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Memory   *MemoryStats `json:"memory,omitempty"`
	Go       string       `json:"go"`
}

// MemoryStats is host memory usage.
type MemoryStats struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// handleHealth reports database and host state
//
//	@Summary	Health check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok", Go: runtime.Version()}
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		resp.Memory = &MemoryStats{Total: vm.Total, Used: vm.Used, UsedPercent: vm.UsedPercent}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
