package models

import "time"

// Activity event types.
const (
	EventRegister    = "REGISTER"
	EventLogin       = "LOGIN"
	EventLoginFailed = "LOGIN_FAILED"
	EventLogout      = "LOGOUT"
	EventApprove     = "APPROVE"
	EventDeny        = "DENY"
	EventDeleteUser  = "DELETE_USER"
	EventToggleRole  = "TOGGLE_ROLE"
	EventUpload      = "UPLOAD"
	EventDeleteFile  = "DELETE_FILE"
)

// ActivityEvent is a single audit log entry.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Actor       string    `json:"actor"`             // who did it
	Subject     string    `json:"subject,omitempty"` // user or file acted upon
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
