package models

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ParentID  *string   `json:"parentId" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	IsDefault bool      `json:"isDefault" db:"is_default"`
	Opened    bool      `json:"opened" db:"opened"` // persisted UI expansion state
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// FolderNode is a folder with its notes and nested children, as returned by
// the folder listing. Depth is capped at two levels (root plus one).
type FolderNode struct {
	Folder
	Notes    []Note        `json:"notes"`
	Children []*FolderNode `json:"children"`
}

type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
}

type RenameFolderRequest struct {
	Name string `json:"name"`
}

type SetOpenedRequest struct {
	Opened bool `json:"opened"`
}
