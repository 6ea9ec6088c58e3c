package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"filehost"
	"filehost/internal/metrics"
	"filehost/internal/models"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"
)

const statusOK = "ok"

// uploadResponse is the JSON returned by POST /upload.
type uploadResponse struct {
	filehost.Response
	Filename string `json:"filename,omitempty"`
}

// dashboardResponse carries the view plus an optional notice from a redirect.
type dashboardResponse struct {
	service.DashboardView
	Error string `json:"error,omitempty"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Dashboard
// @Description  Own files (admins: every user's files) newest first, with total storage.
// @Tags         files
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  filehost.Response
// @Failure      500  {object}  filehost.Response
// @Router       /dashboard [get]
func (h *Handler) dashboard(c *gin.Context) {
	sess := currentSession(c)
	view, err := h.services.Dashboard(c.Request.Context(), sess)
	if err != nil {
		h.respondError(c, err, "dashboard_failed", "username", sess.Username)
		return
	}
	c.JSON(http.StatusOK, dashboardResponse{DashboardView: view, Error: c.Query("error")})
}

// @Summary      Upload a file
// @Description  Stores the file under a sanitized name; an existing name gets a _N suffix, never overwritten.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200  {object}  uploadResponse
// @Failure      400  {object}  filehost.Response
// @Failure      401  {object}  filehost.Response
// @Failure      413  {object}  filehost.Response
// @Failure      500  {object}  filehost.Response
// @Router       /upload [post]
func (h *Handler) upload(c *gin.Context) {
	username := c.GetString(ctxUsername)
	limit := h.opts.MaxUploadBytes

	if c.Request.ContentLength > limit {
		h.metrics.RecordUpload(metrics.UploadTooLarge, 0)
		if h.log != nil {
			h.log.Infow("upload_rejected_too_large", "username", username, "content_length", c.Request.ContentLength)
		}
		c.JSON(http.StatusRequestEntityTooLarge, filehost.Fail(msgFileTooLarge))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		switch {
		case isTooLarge(err):
			h.metrics.RecordUpload(metrics.UploadTooLarge, 0)
			c.JSON(http.StatusRequestEntityTooLarge, filehost.Fail(msgFileTooLarge))
		default:
			h.metrics.RecordUpload(metrics.UploadRejected, 0)
			c.JSON(http.StatusBadRequest, filehost.Fail(msgNoFileChosen))
		}
		return
	}
	if fh.Filename == "" {
		h.metrics.RecordUpload(metrics.UploadRejected, 0)
		c.JSON(http.StatusBadRequest, filehost.Fail(msgNoFileChosen))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.metrics.RecordUpload(metrics.UploadFailed, 0)
		h.respondError(c, fmt.Errorf("%w: %w", service.ErrUploadFailed, err), "upload_failed", "username", username)
		return
	}
	defer func() { _ = f.Close() }()

	stored, err := h.services.Upload(c.Request.Context(), username, fh.Filename, f)
	if err != nil {
		result := metrics.UploadFailed
		if isTooLarge(err) {
			result = metrics.UploadTooLarge
		}
		h.metrics.RecordUpload(result, 0)
		h.respondError(c, err, "upload_failed", "username", username, "filename", fh.Filename)
		return
	}

	h.metrics.RecordUpload(metrics.UploadOK, fh.Size)
	if h.log != nil {
		h.log.Infow("upload_stored", "username", username, "filename", stored, "size", fh.Size)
	}
	c.JSON(http.StatusOK, uploadResponse{
		Response: filehost.OK(fmt.Sprintf("File %s uploaded successfully.", stored)),
		Filename: stored,
	})
}

// @Summary      Download own file
// @Tags         files
// @Produce      octet-stream
// @Param        filename  path  string  true  "File name"
// @Success      200
// @Success      303  "missing file; redirects to /dashboard?error=file_not_found"
// @Router       /download/{filename} [get]
func (h *Handler) download(c *gin.Context) {
	username := c.GetString(ctxUsername)
	rc, info, err := h.services.Files.Open(c.Request.Context(), username, c.Param("filename"))
	if err != nil {
		h.downloadFailed(c, err, "/dashboard", "username", username)
		return
	}
	sendFile(c, rc, info)
}

// @Summary      Delete own file
// @Tags         files
// @Produce      json
// @Param        filename  path  string  true  "File name"
// @Success      200  {object}  filehost.Response
// @Failure      400  {object}  filehost.Response
// @Failure      404  {object}  filehost.Response
// @Router       /delete/{filename} [post]
func (h *Handler) deleteFile(c *gin.Context) {
	username := c.GetString(ctxUsername)
	filename := c.Param("filename")
	if err := h.services.Files.Delete(c.Request.Context(), username, filename); err != nil {
		h.respondError(c, err, "delete_file_failed", "username", username, "filename", filename)
		return
	}
	c.JSON(http.StatusOK, filehost.OK(fmt.Sprintf("File %s deleted successfully.", filename)))
}

// downloadFailed redirects back with a notice when the file is missing, else maps the error.
func (h *Handler) downloadFailed(c *gin.Context, err error, back string, kv ...interface{}) {
	if service.IsNotFound(err) || errors.Is(err, service.ErrInvalidFileName) {
		c.Redirect(http.StatusSeeOther, back+"?error=file_not_found")
		return
	}
	h.respondError(c, err, "download_failed", kv...)
}

// sendFile streams rc as an attachment and closes it.
func sendFile(c *gin.Context, rc io.ReadCloser, info models.StoredFile) {
	defer func() { _ = rc.Close() }()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(info.Name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": info.Name}),
	})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, service.ErrPayloadTooLarge) ||
		strings.Contains(err.Error(), "request body too large")
}
