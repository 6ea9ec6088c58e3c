package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"filehost"
	"filehost/internal/models"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "filehost_session"

	ctxUsername = "username"
	ctxRole     = "role"

	msgLoginRequired = "Please log in to access this page."
	msgAdminRequired = "Admin access required."
)

// sessionToken reads the session cookie, falling back to an Authorization: Bearer header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// sessionMiddleware admits requests carrying a valid session for a user that still exists.
// The role is re-read from the account store on every request.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		h.unauthenticated(c)
		return
	}

	sess, err := h.services.ParseToken(token)
	if err != nil {
		h.clearSession(c)
		h.unauthenticated(c)
		return
	}

	role, err := h.services.Accounts.Role(c.Request.Context(), sess.Username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.clearSession(c)
			h.unauthenticated(c)
			return
		}
		h.logError("auth_role_lookup_failed", err, "username", sess.Username)
		c.AbortWithStatusJSON(http.StatusInternalServerError, filehost.Fail(msgInternal))
		return
	}

	// store in Gin context
	c.Set(ctxUsername, sess.Username)
	c.Set(ctxRole, role)
	c.Next()
}

// adminMiddleware must run after sessionMiddleware.
func (h *Handler) adminMiddleware(c *gin.Context) {
	if currentSession(c).Role != models.RoleAdmin {
		if h.log != nil {
			h.log.Infow("auth_admin_forbidden", "username", c.GetString(ctxUsername), "path", c.Request.URL.Path)
		}
		c.AbortWithStatusJSON(http.StatusForbidden, filehost.Fail(msgAdminRequired))
		return
	}
	c.Next()
}

// unauthenticated sends browsers back to the login page and API clients a 401.
func (h *Handler) unauthenticated(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, filehost.Fail(msgLoginRequired))
}

func currentSession(c *gin.Context) models.Session {
	sess := models.Session{Username: c.GetString(ctxUsername)}
	if v, ok := c.Get(ctxRole); ok {
		sess.Role, _ = v.(models.Role)
	}
	return sess
}

func (h *Handler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.services.TTL().Seconds()), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.opts.CookieSecure, true)
}

// observe logs every request and feeds the request metrics.
func (h *Handler) observe(c *gin.Context) {
	start := time.Now()
	c.Next()
	latency := time.Since(start)
	status := c.Writer.Status()

	h.metrics.RecordRequest(c.Request.Method, c.FullPath(), status, latency)
	if h.log != nil {
		h.log.Infow("http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"user", c.GetString(ctxUsername),
		)
	}
}
