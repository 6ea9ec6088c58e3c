package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"filehost"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "Invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD."
	errToInvalid   = "Invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD."
	errLoadLogs    = "Failed to load activity."

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var errBadTime = errors.New("unrecognized time format")

// activityQuery holds the raw /admin/activity query parameters.
type activityQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
	Type string `form:"type"`
}

// filter converts the query into a service filter. The string result is the
// client-facing reason when the query is rejected.
func (q activityQuery) filter() (service.LogFilter, string) {
	f := service.LogFilter{Type: strings.ToUpper(strings.TrimSpace(q.Type))}

	if q.From != "" {
		t, err := parseQueryTime(q.From)
		if err != nil {
			return f, errFromInvalid
		}
		f.From = t
	}
	if q.To != "" {
		t, err := parseQueryTime(q.To)
		if err != nil {
			return f, errToInvalid
		}
		if isDateOnly(q.To) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, errBadLogsFilter
	}
	return f, ""
}

// @Summary      List activity
// @Description  Filter the audit trail by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive (23:59:59.999999999Z).
// @Tags         admin
// @Produce      json
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to    query   string  false  "End of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). Date-only treated as end of day."  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(REGISTER,LOGIN,LOGIN_FAILED,LOGOUT,APPROVE,DENY,DELETE_USER,TOGGLE_ROLE,UPLOAD,DELETE_FILE)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  filehost.Response
// @Failure      401   {object}  filehost.Response
// @Failure      403   {object}  filehost.Response
// @Failure      500   {object}  filehost.Response
// @Router       /admin/activity [get]
func (h *Handler) getActivity(c *gin.Context) {
	var q activityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, filehost.Fail(errBadLogsFilter))
		return
	}
	f, reason := q.filter()
	if reason != "" {
		c.JSON(http.StatusBadRequest, filehost.Fail(reason))
		return
	}

	events, err := h.services.ActivityLog.List(c.Request.Context(), f)
	switch {
	case service.IsInvalidFilter(err):
		c.JSON(http.StatusBadRequest, filehost.Fail(errBadLogsFilter))
	case err != nil:
		h.logError("activity_list_failed", err, "from", f.From, "to", f.To, "type", f.Type)
		c.JSON(http.StatusInternalServerError, filehost.Fail(errLoadLogs))
	default:
		c.JSON(http.StatusOK, gin.H{"count": len(events), "events": events})
	}
}

// parseQueryTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" and "YYYY-MM-DD", returned in UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadTime, s)
}

func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}
