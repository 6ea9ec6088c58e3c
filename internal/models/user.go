package models

import "time"

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Toggled flips user <-> admin.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// UserRecord is a persisted account. The username is the key of Document.Users.
type UserRecord struct {
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	StorageUsed  int64     `json:"storageUsed"` // cached, may lag the disk
}

// PendingRequest is a registration waiting for admin approval.
type PendingRequest struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Email        string    `json:"email"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// Document is the whole persisted account store.
type Document struct {
	Users           map[string]*UserRecord `json:"users"`
	PendingRequests []PendingRequest       `json:"pendingRequests"`
}

// NewDocument returns an empty, ready to mutate document.
func NewDocument() Document {
	return Document{
		Users:           map[string]*UserRecord{},
		PendingRequests: []PendingRequest{},
	}
}

// PendingIndex returns the index of the pending request for username, or -1.
func (d *Document) PendingIndex(username string) int {
	for i, req := range d.PendingRequests {
		if req.Username == username {
			return i
		}
	}
	return -1
}

// RemovePending drops the pending request at index i, keeping order.
func (d *Document) RemovePending(i int) {
	d.PendingRequests = append(d.PendingRequests[:i], d.PendingRequests[i+1:]...)
}

// Session is the identity attached to an authenticated request.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
