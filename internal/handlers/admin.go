package handlers

import (
	"fmt"
	"net/http"

	"filehost"
	"filehost/internal/models"

	"github.com/gin-gonic/gin"
)

// toggleRoleResponse reports the role a user ended up with.
type toggleRoleResponse struct {
	filehost.Response
	Role models.Role `json:"role"`
}

// @Summary      Admin overview
// @Description  Users with storage usage, pending registrations and every stored file.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  service.AdminOverview
// @Failure      401  {object}  filehost.Response
// @Failure      403  {object}  filehost.Response
// @Router       /admin [get]
func (h *Handler) adminOverview(c *gin.Context) {
	out, err := h.services.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "admin_overview_failed")
		return
	}
	h.metrics.RecordStats(out.Stats)
	c.JSON(http.StatusOK, out)
}

// @Summary      Approve a registration
// @Tags         admin
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  filehost.Response
// @Failure      404  {object}  filehost.Response
// @Router       /admin/approve/{username} [post]
func (h *Handler) approveUser(c *gin.Context) {
	actor, username := c.GetString(ctxUsername), c.Param("username")
	if err := h.services.Approve(c.Request.Context(), actor, username); err != nil {
		h.respondError(c, err, "admin_approve_failed", "actor", actor, "username", username)
		return
	}
	h.logAdmin("admin_approved", actor, username)
	c.JSON(http.StatusOK, filehost.OK(fmt.Sprintf("User %s approved successfully.", username)))
}

// @Summary      Deny a registration
// @Tags         admin
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  filehost.Response
// @Failure      404  {object}  filehost.Response
// @Router       /admin/deny/{username} [post]
func (h *Handler) denyUser(c *gin.Context) {
	actor, username := c.GetString(ctxUsername), c.Param("username")
	if err := h.services.Deny(c.Request.Context(), actor, username); err != nil {
		h.respondError(c, err, "admin_deny_failed", "actor", actor, "username", username)
		return
	}
	h.logAdmin("admin_denied", actor, username)
	c.JSON(http.StatusOK, filehost.OK(fmt.Sprintf("Registration request for %s denied.", username)))
}

// @Summary      Delete a user and all their files
// @Tags         admin
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  filehost.Response
// @Failure      403  {object}  filehost.Response
// @Failure      404  {object}  filehost.Response
// @Router       /admin/delete/{username} [post]
func (h *Handler) deleteUser(c *gin.Context) {
	actor, username := c.GetString(ctxUsername), c.Param("username")
	if err := h.services.DeleteUser(c.Request.Context(), actor, username); err != nil {
		h.respondError(c, err, "admin_delete_user_failed", "actor", actor, "username", username)
		return
	}
	h.logAdmin("admin_deleted_user", actor, username)
	c.JSON(http.StatusOK, filehost.OK(fmt.Sprintf("User %s deleted successfully.", username)))
}

// @Summary      Toggle a user's role
// @Tags         admin
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  toggleRoleResponse
// @Failure      403  {object}  filehost.Response
// @Failure      404  {object}  filehost.Response
// @Router       /admin/toggle-role/{username} [post]
func (h *Handler) toggleRole(c *gin.Context) {
	actor, username := c.GetString(ctxUsername), c.Param("username")
	role, err := h.services.ToggleRole(c.Request.Context(), actor, username)
	if err != nil {
		h.respondError(c, err, "admin_toggle_role_failed", "actor", actor, "username", username)
		return
	}
	h.logAdmin("admin_toggled_role", actor, username, "role", role)
	c.JSON(http.StatusOK, toggleRoleResponse{
		Response: filehost.OK(fmt.Sprintf("User %s is now %s.", username, role)),
		Role:     role,
	})
}

// @Summary      Download any user's file
// @Tags         admin
// @Produce      octet-stream
// @Param        username  path  string  true  "Owner"
// @Param        filename  path  string  true  "File name"
// @Success      200
// @Success      303  "missing file; redirects to /admin?error=file_not_found"
// @Router       /admin/download-file/{username}/{filename} [get]
func (h *Handler) adminDownloadFile(c *gin.Context) {
	owner := c.Param("username")
	rc, info, err := h.services.Admin.OpenFile(c.Request.Context(), owner, c.Param("filename"))
	if err != nil {
		h.downloadFailed(c, err, "/admin", "owner", owner)
		return
	}
	sendFile(c, rc, info)
}

// @Summary      Delete any user's file
// @Tags         admin
// @Produce      json
// @Param        username  path  string  true  "Owner"
// @Param        filename  path  string  true  "File name"
// @Success      200  {object}  filehost.Response
// @Failure      404  {object}  filehost.Response
// @Router       /admin/delete-file/{username}/{filename} [post]
func (h *Handler) adminDeleteFile(c *gin.Context) {
	actor, owner, filename := c.GetString(ctxUsername), c.Param("username"), c.Param("filename")
	if err := h.services.Admin.DeleteFile(c.Request.Context(), actor, owner, filename); err != nil {
		h.respondError(c, err, "admin_delete_file_failed", "actor", actor, "owner", owner, "filename", filename)
		return
	}
	h.logAdmin("admin_deleted_file", actor, owner, "filename", filename)
	c.JSON(http.StatusOK, filehost.OK(fmt.Sprintf("File %s deleted from %s.", filename, owner)))
}

func (h *Handler) logAdmin(key, actor, subject string, kv ...interface{}) {
	if h.log == nil {
		return
	}
	h.log.Infow(key, append([]interface{}{"actor", actor, "subject", subject}, kv...)...)
}
