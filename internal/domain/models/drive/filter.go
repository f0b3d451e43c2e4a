package drive

import "strings"

// FileFilter narrows a file listing. All set fields are combined with AND.
type FileFilter struct {
	// FolderID keeps files whose folder equals this id. nil = no folder filter.
	FolderID *string

	// Type keeps files whose MIME type starts with this prefix (e.g. "image/")
	Type string

	// Search keeps files whose name contains this text, case-insensitively
	Search string
}

// IsEmpty reports whether the filter has no criteria
func (f FileFilter) IsEmpty() bool {
	return f.FolderID == nil && f.Type == "" && f.Search == ""
}

// Matches reports whether file satisfies every criterion of the filter
func (f FileFilter) Matches(file *File) bool {
	if f.FolderID != nil && (file.FolderID == nil || *file.FolderID != *f.FolderID) {
		return false
	}
	if f.Type != "" && !strings.HasPrefix(file.Type, f.Type) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(file.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
