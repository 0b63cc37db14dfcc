package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elee1766/naochat/src/storage"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// Context keys set by the middleware.
const (
	ctxUser    = "user"
	ctxProject = "project"
	ctxRole    = "role"
)

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

// rateLimit allows limit requests per client IP in each window. Counters live
// in an expiring cache so idle clients cost nothing.
func rateLimit(limit int, window time.Duration) gin.HandlerFunc {
	counters := cache.New(window, 2*window)
	return func(c *gin.Context) {
		key := c.ClientIP()
		if err := counters.Add(key, 1, cache.DefaultExpiration); err == nil {
			c.Next()
			return
		}
		count, err := counters.IncrementInt(key, 1)
		if err != nil {
			// The entry expired between Add and Increment.
			counters.Set(key, 1, cache.DefaultExpiration)
			count = 1
		}
		if count > limit {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			abortError(c, http.StatusTooManyRequests, "too many requests", nil)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireUser authenticates the bearer token.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortError(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		user, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid token", err)
			return
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}

// requireMember loads the project and the caller's role in it.
func (s *Server) requireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		project, err := storage.GetDefaultProject(ctx, s.db)
		if err != nil {
			abortError(c, http.StatusInternalServerError, "failed to load project", err)
			return
		}
		if project == nil {
			abortError(c, http.StatusNotFound, "no project is configured", nil)
			return
		}
		member, err := storage.GetProjectMember(ctx, s.db, project.ID, currentUser(c).ID)
		if err != nil {
			abortError(c, http.StatusInternalServerError, "failed to load membership", err)
			return
		}
		if member == nil {
			abortError(c, http.StatusForbidden, "not a member of this project", nil)
			return
		}
		c.Set(ctxProject, project)
		c.Set(ctxRole, member.Role)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentRole(c) != storage.RoleAdmin {
			abortError(c, http.StatusForbidden, "admin role required", nil)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *storage.User {
	return c.MustGet(ctxUser).(*storage.User)
}

func currentProject(c *gin.Context) *storage.Project {
	return c.MustGet(ctxProject).(*storage.Project)
}

func currentRole(c *gin.Context) storage.Role {
	role, _ := c.Get(ctxRole)
	r, _ := role.(storage.Role)
	return r
}
