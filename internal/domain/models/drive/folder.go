package drive

import (
	"time"
)

// RootPath is what path lookups report for the unfiled/root level.
const RootPath = "/"

type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *string   `json:"parentId" db:"parent_id"` // NULL = root level
	Path      string    `json:"path" db:"path"`          // Materialized: parent path + "/" + name
	Color     string    `json:"color,omitempty" db:"color"`
	Icon      string    `json:"icon,omitempty" db:"icon"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top level
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Clone returns a deep copy so callers never share the ParentID pointer
func (f Folder) Clone() Folder {
	if f.ParentID != nil {
		parentID := *f.ParentID
		f.ParentID = &parentID
	}
	return f
}
