package drive

import (
	"fmt"
	"strings"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
)

// FolderLookup resolves a folder by ID
type FolderLookup func(id string) (*models.Folder, bool)

// LookupFromList builds a FolderLookup over a flat folder list
func LookupFromList(folders []models.Folder) FolderLookup {
	byID := make(map[string]*models.Folder, len(folders))
	for i := range folders {
		byID[folders[i].ID] = &folders[i]
	}
	return func(id string) (*models.Folder, bool) {
		f, ok := byID[id]
		return f, ok
	}
}

// ComputePath derives a folder's materialized path from its parent chain:
// "/" + name at the root, otherwise parent path + "/" + name.
// A missing parent fails with ParentNotFound; a parent chain that loops back
// on itself fails with InvalidOperation.
func ComputePath(folder *models.Folder, lookup FolderLookup) (string, error) {
	return computePath(folder, lookup, make(map[string]struct{}))
}

func computePath(folder *models.Folder, lookup FolderLookup, seen map[string]struct{}) (string, error) {
	if folder.IsRoot() {
		return "/" + folder.Name, nil
	}

	if _, ok := seen[folder.ID]; ok && folder.ID != "" {
		return "", &domain.InvalidOperationError{
			Message: fmt.Sprintf("folder %s is part of a parent cycle", folder.ID),
		}
	}
	seen[folder.ID] = struct{}{}

	parent, ok := lookup(*folder.ParentID)
	if !ok {
		return "", &domain.ParentNotFoundError{
			Message:  fmt.Sprintf("parent folder %s not found", *folder.ParentID),
			ParentID: *folder.ParentID,
		}
	}

	parentPath, err := computePath(parent, lookup, seen)
	if err != nil {
		return "", err
	}
	return parentPath + "/" + folder.Name, nil
}

// IsSelfOrDescendant reports whether candidateID is folderID itself or sits
// somewhere below it. It walks from the candidate up to the root.
func IsSelfOrDescendant(folderID, candidateID string, lookup FolderLookup) bool {
	seen := make(map[string]struct{})
	currentID := candidateID
	for {
		if currentID == folderID {
			return true
		}
		if _, ok := seen[currentID]; ok {
			// Existing cycle that does not include folderID
			return false
		}
		seen[currentID] = struct{}{}

		current, ok := lookup(currentID)
		if !ok || current.IsRoot() {
			return false
		}
		currentID = *current.ParentID
	}
}

// HasPathPrefix reports whether path lies strictly below prefix
func HasPathPrefix(path, prefix string) bool {
	return strings.HasPrefix(path, prefix+"/")
}
