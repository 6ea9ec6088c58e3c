package handlers

import (
	"errors"
	"net/http"

	"filehost"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgInternal      = "Internal server error."
	msgFileTooLarge  = "File is too large."
	msgInvalidLogin  = "Invalid username or password."
	msgNoFileChosen  = "No file selected."
	msgUploadFailed  = "Upload failed."
	errBadLogsFilter = "'from' must be <= 'to'"
)

// statusFor maps domain errors to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, service.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, msgFileTooLarge
	case errors.Is(err, service.ErrFileNotFound):
		return http.StatusNotFound, "File not found."
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, service.ErrRequestNotFound):
		return http.StatusNotFound, "Registration request not found."
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "Username already exists."
	case errors.Is(err, service.ErrRequestAlreadyPending):
		return http.StatusConflict, "Registration request already pending."
	case errors.Is(err, service.ErrProtectedAccount):
		return http.StatusForbidden, "The main admin account cannot be deleted or demoted."
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidLogin
	case errors.Is(err, service.ErrInvalidUsername):
		return http.StatusBadRequest, "Invalid username. Use letters, digits, '.', '_' or '-'."
	case errors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, "Password is required."
	case errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes."
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "Invalid email address."
	case errors.Is(err, service.ErrInvalidFileName):
		return http.StatusBadRequest, "Invalid file name."
	case errors.Is(err, service.ErrUploadFailed):
		return http.StatusInternalServerError, msgUploadFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// respondError writes the mapped status with a {success:false} envelope.
// Server-side failures are logged with their cause; the cause is never echoed.
func (h *Handler) respondError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logError(logKey, err, kv...)
	} else if h.log != nil {
		h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
	}
	c.JSON(status, filehost.Fail(msg))
}

func (h *Handler) logError(logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
}
