package drive

// FolderNode is a folder with its nested children. It is rebuilt from the flat
// folder list on every read and never stored.
type FolderNode struct {
	Folder
	Children  []*FolderNode `json:"children"`
	FileCount int           `json:"fileCount"`
}

// Tree is the full browsing view: root folders plus files that sit outside
// any folder
type Tree struct {
	Folders      []*FolderNode `json:"folders"`
	UnfiledFiles []File        `json:"unfiledFiles"`
	TotalFolders int           `json:"totalFolders"`
	TotalFiles   int           `json:"totalFiles"`
}
