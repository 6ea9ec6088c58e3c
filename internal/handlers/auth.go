package handlers

import (
	"errors"
	"net/http"
	"strings"

	"filehost"
	"filehost/internal/models"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"
)

// formDescription tells API clients which fields a form page accepts.
type formDescription struct {
	Form   string   `json:"form"`
	Action string   `json:"action"`
	Method string   `json:"method"`
	Fields []string `json:"fields"`
}

// @Summary      Entry point
// @Description  Redirects to /dashboard with a valid session, else to /login.
// @Tags         auth
// @Success      302
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	if _, ok := h.activeSession(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// @Summary      Login form
// @Tags         auth
// @Produce      json
// @Success      200  {object}  formDescription
// @Router       /login [get]
func (h *Handler) loginForm(c *gin.Context) {
	if _, ok := h.activeSession(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.JSON(http.StatusOK, formDescription{
		Form: "login", Action: "/login", Method: http.MethodPost,
		Fields: []string{"username", "password"},
	})
}

// @Summary      Sign in
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Failure      400  {object}  filehost.Response
// @Failure      401  {object}  filehost.Response
// @Router       /login [post]
func (h *Handler) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, filehost.Fail("Username and password are required."))
		return
	}

	sess, err := h.services.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_sign_in_failed", "username", username)
			}
			c.JSON(http.StatusUnauthorized, filehost.Fail(msgInvalidLogin))
			return
		}
		h.respondError(c, err, "auth_sign_in_error", "username", username)
		return
	}

	token, err := h.services.IssueToken(sess)
	if err != nil {
		h.respondError(c, err, "auth_issue_token_failed", "username", username)
		return
	}
	h.setSession(c, token)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// @Summary      Registration form
// @Tags         auth
// @Produce      json
// @Success      200  {object}  formDescription
// @Router       /register [get]
func (h *Handler) registerForm(c *gin.Context) {
	c.JSON(http.StatusOK, formDescription{
		Form: "register", Action: "/register", Method: http.MethodPost,
		Fields: []string{"username", "password", "email"},
	})
}

// @Summary      Request an account
// @Description  Queues a registration request; an admin must approve it before the user can sign in.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true   "Username"
// @Param        password  formData  string  true   "Password"
// @Param        email     formData  string  false  "Email"
// @Success      303
// @Failure      400  {object}  filehost.Response
// @Failure      409  {object}  filehost.Response
// @Router       /register [post]
func (h *Handler) register(c *gin.Context) {
	username := c.PostForm("username")
	err := h.services.Register(c.Request.Context(), username, c.PostForm("password"), c.PostForm("email"))
	if err != nil {
		h.respondError(c, err, "auth_sign_up_failed", "username", username)
		return
	}
	if h.log != nil {
		h.log.Infow("auth_sign_up_pending", "username", username)
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// @Summary      Sign out
// @Tags         auth
// @Success      302
// @Router       /logout [get]
func (h *Handler) logout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		if sess, err := h.services.ParseToken(token); err == nil {
			h.services.Logout(c.Request.Context(), sess.Username)
		}
	}
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/login")
}

// activeSession reports whether the request carries a valid session for an existing user.
func (h *Handler) activeSession(c *gin.Context) (models.Session, bool) {
	token := sessionToken(c)
	if token == "" {
		return models.Session{}, false
	}
	sess, err := h.services.ParseToken(token)
	if err != nil {
		return models.Session{}, false
	}
	role, err := h.services.Accounts.Role(c.Request.Context(), sess.Username)
	if err != nil {
		return models.Session{}, false
	}
	sess.Role = role
	return sess, true
}
