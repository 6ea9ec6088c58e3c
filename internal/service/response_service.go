package service

import (
	"time"

	"filehost/internal/models"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "REGISTER", "LOGIN", "UPLOAD", ...
}

// FileView is a stored file plus its display size.
type FileView struct {
	models.StoredFile
	SizeHuman string `json:"size_human"`
}

// DashboardView is what a signed-in user sees. Admins get every namespace.
type DashboardView struct {
	Username         string      `json:"username"`
	Role             models.Role `json:"role"`
	Files            []FileView  `json:"files"`
	TotalFiles       int         `json:"total_files"`
	StorageUsed      int64       `json:"storage_used"`
	StorageUsedHuman string      `json:"storage_used_human"`
}

// UserSummary is one row of the admin user table.
type UserSummary struct {
	Username         string      `json:"username"`
	Role             models.Role `json:"role"`
	Email            string      `json:"email,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	StorageUsed      int64       `json:"storage_used"`
	StorageUsedHuman string      `json:"storage_used_human"`
	FileCount        int         `json:"file_count"`
}

// PendingView is a registration request without its password hash.
type PendingView struct {
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// AdminOverview backs GET /admin.
type AdminOverview struct {
	Users           []UserSummary       `json:"users"`
	PendingRequests []PendingView       `json:"pending_requests"`
	Files           []FileView          `json:"files"`
	Stats           models.StorageStats `json:"stats"`
}
