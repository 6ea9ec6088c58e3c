package models

import "time"

// StoredFile describes a file in a user's namespace. Nothing here is cached in the Document.
type StoredFile struct {
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified"`
}

// StorageStats is an aggregate snapshot over every namespace.
type StorageStats struct {
	Users      int   `json:"users"`
	Pending    int   `json:"pending"`
	Files      int   `json:"files"`
	TotalBytes int64 `json:"totalBytes"`
}
