package filetypes

// Category groups MIME types that are accepted for upload
type Category struct {
	ID           string   `yaml:"id" json:"id"`
	DisplayName  string   `yaml:"display_name" json:"displayName"`
	MIMEPrefixes []string `yaml:"mime_prefixes" json:"mimePrefixes"`
	Extensions   []string `yaml:"extensions" json:"extensions"`

	// Thumbnail marks categories whose upload URL doubles as a preview
	Thumbnail bool `yaml:"thumbnail" json:"thumbnail"`
}

// Policy is the upload acceptance policy loaded from YAML
type Policy struct {
	MaxSize    int64      `yaml:"max_size" json:"maxSize"`
	Categories []Category `yaml:"categories" json:"categories"`
}
